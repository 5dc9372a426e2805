package projectconfig_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/experimentkit/pkg/bucketer"
	"github.com/dmitrymomot/experimentkit/pkg/condition"
	"github.com/dmitrymomot/experimentkit/pkg/projectconfig"
)

func testDatafile() projectconfig.Datafile {
	return projectconfig.Datafile{
		ProjectID: "789",
		Revision:  "42",
		Version:   "4",
		Experiments: []projectconfig.Experiment{
			{
				ID:     "223",
				Key:    "etag1",
				Status: projectconfig.StatusRunning,
				AudienceIDs: []string{
					"100",
				},
				Variations: []projectconfig.Variation{
					{ID: "276", Key: "vtag1"},
					{ID: "277", Key: "vtag2"},
				},
				TrafficAllocation: []bucketer.Allocation{
					{EntityID: "276", EndOfRange: 3500},
					{EntityID: "277", EndOfRange: 9000},
				},
			},
			{
				ID:     "224",
				Key:    "etag2",
				Status: projectconfig.StatusPaused,
				Variations: []projectconfig.Variation{
					{ID: "280", Key: "vtag3"},
				},
				TrafficAllocation: []bucketer.Allocation{
					{EntityID: "280", EndOfRange: 10000},
				},
			},
		},
		Groups: []projectconfig.Group{
			{
				ID:            "13",
				Policy:        projectconfig.PolicyRandom,
				ExperimentIDs: []string{"223", "224"},
				TrafficAllocation: []bucketer.Allocation{
					{EntityID: "223", EndOfRange: 5000},
					{EntityID: "224", EndOfRange: 10000},
				},
			},
		},
		Audiences: []projectconfig.Audience{
			{
				ID:         "100",
				Name:       "not_firefox_users",
				Conditions: condition.NewNot(condition.NewMatch("browser_type", "firefox")),
			},
		},
		FeatureFlags: []projectconfig.FeatureFlag{
			{
				ID:            "91111",
				Key:           "new_checkout",
				RolloutID:     "166660",
				ExperimentIDs: []string{"223"},
				Variables: []projectconfig.Variable{
					{ID: "675", Key: "price", Type: projectconfig.VariableDouble, DefaultValue: "9.99"},
				},
			},
		},
		Rollouts: []projectconfig.Rollout{
			{ID: "166660"},
		},
		Attributes: []projectconfig.Attribute{
			{ID: "1", Key: "browser_type"},
		},
		Events: []projectconfig.Event{
			{ID: "971", Key: "clicked_cart", ExperimentIDs: []string{"223"}},
		},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("BuildsIndices", func(t *testing.T) {
		t.Parallel()
		cfg, err := projectconfig.New(testDatafile())
		require.NoError(t, err)

		exp, err := cfg.ExperimentByKey("etag1")
		require.NoError(t, err)
		assert.Equal(t, "223", exp.ID)

		sameExp, err := cfg.ExperimentByID("223")
		require.NoError(t, err)
		assert.Same(t, exp, sameExp)

		grp, err := cfg.GroupByID("13")
		require.NoError(t, err)
		assert.Equal(t, projectconfig.PolicyRandom, grp.Policy)

		aud, err := cfg.AudienceByID("100")
		require.NoError(t, err)
		assert.Equal(t, "not_firefox_users", aud.Name)

		flag, err := cfg.FeatureByKey("new_checkout")
		require.NoError(t, err)
		assert.Equal(t, "166660", flag.RolloutID)

		_, err = cfg.RolloutByID("166660")
		require.NoError(t, err)

		ev, err := cfg.EventByKey("clicked_cart")
		require.NoError(t, err)
		assert.Equal(t, "971", ev.ID)

		assert.True(t, cfg.HasAttribute("browser_type"))
		assert.False(t, cfg.HasAttribute("undeclared"))

		assert.Equal(t, "42", cfg.Revision())
		assert.Equal(t, "789", cfg.ProjectID())
	})

	t.Run("UnknownLookups", func(t *testing.T) {
		t.Parallel()
		cfg, err := projectconfig.New(testDatafile())
		require.NoError(t, err)

		_, err = cfg.ExperimentByKey("missing")
		assert.ErrorIs(t, err, projectconfig.ErrExperimentNotFound)
		_, err = cfg.ExperimentByID("0")
		assert.ErrorIs(t, err, projectconfig.ErrExperimentNotFound)
		_, err = cfg.GroupByID("0")
		assert.ErrorIs(t, err, projectconfig.ErrGroupNotFound)
		_, err = cfg.AudienceByID("0")
		assert.ErrorIs(t, err, projectconfig.ErrAudienceNotFound)
		_, err = cfg.FeatureByKey("missing")
		assert.ErrorIs(t, err, projectconfig.ErrFeatureNotFound)
		_, err = cfg.RolloutByID("0")
		assert.ErrorIs(t, err, projectconfig.ErrRolloutNotFound)
		_, err = cfg.EventByKey("missing")
		assert.ErrorIs(t, err, projectconfig.ErrEventNotFound)
	})

	t.Run("DuplicateExperimentKey", func(t *testing.T) {
		t.Parallel()
		df := testDatafile()
		df.Experiments = append(df.Experiments, projectconfig.Experiment{ID: "999", Key: "etag1"})
		_, err := projectconfig.New(df)
		assert.ErrorIs(t, err, projectconfig.ErrInvalidDatafile)
	})

	t.Run("EmptyExperimentKey", func(t *testing.T) {
		t.Parallel()
		df := testDatafile()
		df.Experiments = append(df.Experiments, projectconfig.Experiment{ID: "999"})
		_, err := projectconfig.New(df)
		assert.ErrorIs(t, err, projectconfig.ErrInvalidDatafile)
	})
}

func TestExperimentLookups(t *testing.T) {
	t.Parallel()

	cfg, err := projectconfig.New(testDatafile())
	require.NoError(t, err)
	exp, err := cfg.ExperimentByKey("etag1")
	require.NoError(t, err)

	t.Run("VariationByID", func(t *testing.T) {
		t.Parallel()
		v, ok := exp.VariationByID("277")
		require.True(t, ok)
		assert.Equal(t, "vtag2", v.Key)

		_, ok = exp.VariationByID("0")
		assert.False(t, ok)
	})

	t.Run("VariationByKey", func(t *testing.T) {
		t.Parallel()
		v, ok := exp.VariationByKey("vtag1")
		require.True(t, ok)
		assert.Equal(t, "276", v.ID)

		_, ok = exp.VariationByKey("missing")
		assert.False(t, ok)
	})

	t.Run("IsRunning", func(t *testing.T) {
		t.Parallel()
		assert.True(t, exp.IsRunning())

		paused, err := cfg.ExperimentByKey("etag2")
		require.NoError(t, err)
		assert.False(t, paused.IsRunning())

		launched := projectconfig.Experiment{Status: projectconfig.StatusLaunched}
		assert.False(t, launched.IsRunning())
	})
}

func TestForcedVariations(t *testing.T) {
	t.Parallel()

	t.Run("SetGetClear", func(t *testing.T) {
		t.Parallel()
		cfg, err := projectconfig.New(testDatafile())
		require.NoError(t, err)

		_, ok := cfg.GetForcedVariation("etag1", "user-1")
		assert.False(t, ok)

		require.NoError(t, cfg.SetForcedVariation("etag1", "user-1", "vtag2"))
		got, ok := cfg.GetForcedVariation("etag1", "user-1")
		require.True(t, ok)
		assert.Equal(t, "vtag2", got)

		// Clearing with an empty key removes the override.
		require.NoError(t, cfg.SetForcedVariation("etag1", "user-1", ""))
		_, ok = cfg.GetForcedVariation("etag1", "user-1")
		assert.False(t, ok)
	})

	t.Run("UnknownExperiment", func(t *testing.T) {
		t.Parallel()
		cfg, err := projectconfig.New(testDatafile())
		require.NoError(t, err)
		err = cfg.SetForcedVariation("missing", "user-1", "vtag1")
		assert.ErrorIs(t, err, projectconfig.ErrExperimentNotFound)
	})

	t.Run("UnknownVariation", func(t *testing.T) {
		t.Parallel()
		cfg, err := projectconfig.New(testDatafile())
		require.NoError(t, err)
		err = cfg.SetForcedVariation("etag1", "user-1", "missing")
		assert.ErrorIs(t, err, projectconfig.ErrVariationNotFound)
	})

	t.Run("ConcurrentReadWrite", func(t *testing.T) {
		t.Parallel()
		cfg, err := projectconfig.New(testDatafile())
		require.NoError(t, err)

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(2)
			go func() {
				defer wg.Done()
				for range 200 {
					_ = cfg.SetForcedVariation("etag1", "user-1", "vtag1")
					_ = cfg.SetForcedVariation("etag1", "user-1", "")
				}
			}()
			go func() {
				defer wg.Done()
				for range 200 {
					if v, ok := cfg.GetForcedVariation("etag1", "user-1"); ok {
						// A read must never observe a partially written entry.
						assert.Equal(t, "vtag1", v)
					}
				}
			}()
		}
		wg.Wait()
	})
}

func TestFeatureVariableLookups(t *testing.T) {
	t.Parallel()

	cfg, err := projectconfig.New(testDatafile())
	require.NoError(t, err)
	flag, err := cfg.FeatureByKey("new_checkout")
	require.NoError(t, err)

	v, ok := flag.VariableByKey("price")
	require.True(t, ok)
	assert.Equal(t, projectconfig.VariableDouble, v.Type)
	assert.Equal(t, "9.99", v.DefaultValue)

	_, ok = flag.VariableByKey("missing")
	assert.False(t, ok)

	variation := projectconfig.Variation{
		ID:        "276",
		Key:       "vtag1",
		Variables: []projectconfig.VariableUsage{{ID: "675", Value: "4.99"}},
	}
	usage, ok := variation.VariableUsageByID("675")
	require.True(t, ok)
	assert.Equal(t, "4.99", usage.Value)

	_, ok = variation.VariableUsageByID("0")
	assert.False(t, ok)
}

func TestFeaturesOrder(t *testing.T) {
	t.Parallel()

	df := testDatafile()
	df.FeatureFlags = append(df.FeatureFlags, projectconfig.FeatureFlag{ID: "92222", Key: "second_flag"})
	cfg, err := projectconfig.New(df)
	require.NoError(t, err)

	flags := cfg.Features()
	require.Len(t, flags, 2)
	assert.Equal(t, "new_checkout", flags[0].Key)
	assert.Equal(t, "second_flag", flags[1].Key)
}
