package bloomtier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperast-go/hyperast/pkg/bloomtier"
)

func TestSelectTier_Boundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		refs       int
		skippedAna bool
		want       bloomtier.Tier
	}{
		{0, false, bloomtier.TierNone},
		{1, false, bloomtier.Tier16},
		{8, false, bloomtier.Tier16},
		{9, false, bloomtier.Tier32},
		{15, false, bloomtier.Tier32},
		{16, false, bloomtier.Tier64},
		{30, false, bloomtier.Tier64},
		{31, false, bloomtier.Tier128},
		{100, false, bloomtier.Tier128},
		{101, false, bloomtier.Tier256},
		{150, false, bloomtier.Tier256},
		{151, false, bloomtier.Tier512},
		{256, false, bloomtier.Tier512},
		{257, false, bloomtier.Tier1024},
		{512, false, bloomtier.Tier1024},
		{513, false, bloomtier.Tier2048},
		{1024, false, bloomtier.Tier2048},
		{1025, false, bloomtier.Tier2048},
		{2048, false, bloomtier.Tier2048},
		{2049, false, bloomtier.TierMuch},
		{3000, false, bloomtier.TierMuch},
		{0, true, bloomtier.TierMuch},
		{5, true, bloomtier.TierMuch},
	}

	for _, tc := range cases {
		got := bloomtier.SelectTier(tc.refs, tc.skippedAna)
		assert.Equalf(t, tc.want, got, "refs=%d skippedAna=%v", tc.refs, tc.skippedAna)
	}
}

func TestFilter_AddTest(t *testing.T) {
	t.Parallel()

	f := bloomtier.New(bloomtier.Tier64)
	f.Add([]byte("some.ref.Path"))

	assert.True(t, f.Test([]byte("some.ref.Path")))
}

func TestFilter_NoneNeverMatches(t *testing.T) {
	t.Parallel()

	f := bloomtier.New(bloomtier.TierNone)
	f.Add([]byte("anything"))

	require.False(t, f.Test([]byte("anything")))
}

func TestFilter_MuchAlwaysMatches(t *testing.T) {
	t.Parallel()

	f := bloomtier.New(bloomtier.TierMuch)

	require.True(t, f.Test([]byte("never added")))
}
