package preset

import (
	"testing"

	"github.com/matt-g-everett/keyframer/keyframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var target = Target{X: 200, Y: 100, Width: 80, Height: 40, Rotation: 10}

func TestCatalogIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Catalog() {
		assert.False(t, seen[p.ID], p.ID)
		seen[p.ID] = true
		assert.Contains(t, []string{Transform, Styles, Reveal}, p.Category)
		for _, s := range p.Steps {
			_, ok := keyframe.Ease(s.Easing)
			assert.True(t, ok, "%s uses unknown easing %q", p.ID, s.Easing)
		}
	}
	assert.Len(t, seen, 26)
}

func TestApplyEveryPresetKeepsTracksSorted(t *testing.T) {
	for _, p := range Catalog() {
		store := keyframe.NewStore()
		require.NoError(t, Apply(store, "obj", target, p.ID, 12), p.ID)

		for _, prop := range store.Properties("obj") {
			track := store.Track("obj", prop)
			for i := 1; i < len(track); i++ {
				assert.Less(t, track[i-1].Frame, track[i].Frame, "%s %s", p.ID, prop)
			}
		}
		assert.ElementsMatch(t, p.Properties(), store.Properties("obj"), p.ID)
	}
}

func TestSlideIsRelativeToTarget(t *testing.T) {
	store := keyframe.NewStore()
	require.NoError(t, Apply(store, "obj", target, "slide", 5))

	track := store.Track("obj", "position")
	require.Len(t, track, 2)
	assert.Equal(t, 5.0, track[0].Frame)
	assert.True(t, track[0].Value.Equal(keyframe.Point(50, 100)))
	assert.Equal(t, 35.0, track[1].Frame)
	assert.True(t, track[1].Value.Equal(keyframe.Point(200, 100)))
	assert.Equal(t, "easeOut", track[0].Easing)
}

func TestSpinAddsFullTurn(t *testing.T) {
	kfs := mustLookup(t, "spin").Keyframes(target, 0)
	require.Len(t, kfs, 2)
	assert.True(t, kfs[1].Value.Equal(keyframe.Scalar(370)))
}

func TestApplyUnknownPreset(t *testing.T) {
	err := Apply(keyframe.NewStore(), "obj", target, "teleport", 0)
	assert.ErrorIs(t, err, keyframe.ErrInvalidArgument)
}

func TestSearch(t *testing.T) {
	reveal := Search(Reveal, "")
	assert.Len(t, reveal, 7)

	fades := Search("", "FADE")
	ids := []string{}
	for _, p := range fades {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"fade-in", "fade-out", "slide-fade", "zoom-fade"}, ids)
}

func mustLookup(t *testing.T, id string) Preset {
	t.Helper()
	p, ok := Lookup(id)
	require.True(t, ok, id)
	return p
}
