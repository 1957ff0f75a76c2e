package pipeline

import (
	"testing"

	"github.com/CaelSnow/windkraft-gpu/featureflag"
	"github.com/CaelSnow/windkraft-gpu/lod"
	"github.com/CaelSnow/windkraft-gpu/models"
	"github.com/CaelSnow/windkraft-gpu/view"
	"github.com/stretchr/testify/require"
)

func sceneWithField(t *testing.T, count int) *models.Scene {
	t.Helper()

	scene := models.NewScene()
	scene.AddAll(models.GenerateField(count, models.DefaultFieldSeed))
	scene.BuildCaches()
	return scene
}

func extractedFrustum(c view.Camera) *view.Frustum {
	var f view.Frustum
	f.ExtractFromCamera(c)
	return &f
}

func TestPipelineRun(t *testing.T) {
	t.Run("stage counts add up", func(t *testing.T) {
		scene := sceneWithField(t, 5000)
		pipe := New(featureflag.New(nil))

		camera := view.DefaultCamera()
		frame := pipe.Run(RunInput{
			Year:    2030,
			Camera:  camera,
			Frustum: extractedFrustum(camera),
			Scene:   scene,
		})

		stats := frame.Stats
		require.Equal(t, 5000, stats.TotalCandidates)
		require.Equal(t, stats.TotalCandidates,
			stats.CulledBySpatial+stats.CulledByFrustum+stats.Visible)

		grouped := 0
		for _, turbines := range frame.Groups {
			grouped += len(turbines)
		}
		require.Equal(t, stats.Visible, grouped)
	})

	t.Run("year filter bounds the candidates", func(t *testing.T) {
		scene := sceneWithField(t, 2000)
		pipe := New(featureflag.New(nil))

		camera := view.DefaultCamera()
		frame := pipe.Run(RunInput{
			Year:    1995,
			Camera:  camera,
			Frustum: extractedFrustum(camera),
			Scene:   scene,
		})

		require.Equal(t, len(scene.FeaturesUntil(1995)), frame.Stats.TotalCandidates)
		for _, turbines := range frame.Groups {
			for _, turbine := range turbines {
				require.LessOrEqual(t, turbine.Year, 1995)
			}
		}
	})

	t.Run("small candidate sets skip the spatial prefilter", func(t *testing.T) {
		scene := sceneWithField(t, 500)
		pipe := New(featureflag.New(nil))

		camera := view.DefaultCamera()
		frame := pipe.Run(RunInput{
			Year:    2030,
			Camera:  camera,
			Frustum: extractedFrustum(camera),
			Scene:   scene,
		})

		require.Zero(t, frame.Stats.CulledBySpatial)
	})

	t.Run("nil frustum keeps every candidate", func(t *testing.T) {
		scene := sceneWithField(t, 500)
		pipe := New(featureflag.New(nil))

		frame := pipe.Run(RunInput{
			Year:   2030,
			Camera: view.DefaultCamera(),
			Scene:  scene,
		})

		require.Zero(t, frame.Stats.CulledByFrustum)
		require.Equal(t, 500, frame.Stats.Visible)
	})

	t.Run("empty scene yields an empty frame", func(t *testing.T) {
		scene := models.NewScene()
		pipe := New(featureflag.New(nil))

		camera := view.DefaultCamera()
		frame := pipe.Run(RunInput{
			Year:    2030,
			Camera:  camera,
			Frustum: extractedFrustum(camera),
			Scene:   scene,
		})

		require.Zero(t, frame.Stats.TotalCandidates)
		require.Zero(t, frame.Stats.Visible)
		require.Empty(t, frame.Groups)
	})

	t.Run("visible turbines carry their frame state", func(t *testing.T) {
		scene := sceneWithField(t, 500)
		pipe := New(featureflag.New(nil))

		camera := view.DefaultCamera()
		frame := pipe.Run(RunInput{
			Year:    2030,
			Camera:  camera,
			Frustum: extractedFrustum(camera),
			Scene:   scene,
		})

		mgr := scene.LODManager()
		for name, turbines := range frame.Groups {
			for _, turbine := range turbines {
				require.Equal(t, name, mgr.Level(turbine.LODOrdinal()).Name)
				require.Greater(t, turbine.CameraDistance(), float32(0))
			}
		}
	})

	t.Run("explicit lod manager overrides the scene's", func(t *testing.T) {
		scene := sceneWithField(t, 500)
		pipe := New(featureflag.New(nil))

		camera := view.DefaultCamera()
		frame := pipe.Run(RunInput{
			Year:    2030,
			Camera:  camera,
			Frustum: extractedFrustum(camera),
			Scene:   scene,
			LOD:     lod.NewPresetManager(lod.PresetExtreme),
		})

		extreme := lod.NewPresetManager(lod.PresetExtreme)
		for name := range frame.Groups {
			found := false
			for _, level := range extreme.Levels() {
				if level.Name == name {
					found = true
				}
			}
			require.True(t, found, "group %s", name)
		}
	})

	t.Run("last stats mirror the latest frame", func(t *testing.T) {
		scene := sceneWithField(t, 500)
		pipe := New(featureflag.New(nil))

		camera := view.DefaultCamera()
		frame := pipe.Run(RunInput{
			Year:    2030,
			Camera:  camera,
			Frustum: extractedFrustum(camera),
			Scene:   scene,
		})

		require.Equal(t, frame.Stats.Visible, pipe.LastStats().Visible)
		require.NotZero(t, pipe.LastStats().Elapsed)
	})
}

func TestPipelineFeatureFlags(t *testing.T) {
	t.Run("disabling frustum culling keeps everything", func(t *testing.T) {
		scene := sceneWithField(t, 500)
		pipe := New(featureflag.New([]string{
			string(featureflag.FlagDisableFrustumCulling),
		}))

		camera := view.DefaultCamera()
		frame := pipe.Run(RunInput{
			Year:    2030,
			Camera:  camera,
			Frustum: extractedFrustum(camera),
			Scene:   scene,
		})

		require.Zero(t, frame.Stats.CulledByFrustum)
		require.Equal(t, 500, frame.Stats.Visible)
	})

	t.Run("disabling the spatial prefilter feeds everything to the frustum", func(t *testing.T) {
		scene := sceneWithField(t, 5000)
		pipe := New(featureflag.New([]string{
			string(featureflag.FlagDisableSpatialPrefilter),
		}))

		camera := view.DefaultCamera()
		frame := pipe.Run(RunInput{
			Year:    2030,
			Camera:  camera,
			Frustum: extractedFrustum(camera),
			Scene:   scene,
		})

		require.Zero(t, frame.Stats.CulledBySpatial)
	})

	t.Run("disabling lod renders full detail", func(t *testing.T) {
		scene := sceneWithField(t, 500)
		pipe := New(featureflag.New([]string{
			string(featureflag.FlagDisableLOD),
		}))

		camera := view.DefaultCamera()
		frame := pipe.Run(RunInput{
			Year:    2030,
			Camera:  camera,
			Frustum: extractedFrustum(camera),
			Scene:   scene,
		})

		mgr := scene.LODManager()
		require.Len(t, frame.Groups, 1)
		require.Contains(t, frame.Groups, mgr.Level(0).Name)
	})
}
