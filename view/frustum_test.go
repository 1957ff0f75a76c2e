package view

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlane(t *testing.T) {
	t.Run("normalized has unit normal", func(t *testing.T) {
		p := Plane{A: 0, B: 3, C: 4, D: 10}.Normalized()
		require.InDelta(t, 0.6, p.B, 1e-6)
		require.InDelta(t, 0.8, p.C, 1e-6)
		require.InDelta(t, 2.0, p.D, 1e-6)
	})

	t.Run("degenerate normal is returned unchanged", func(t *testing.T) {
		p := Plane{D: 5}.Normalized()
		require.Equal(t, Plane{D: 5}, p)
	})

	t.Run("signed distance", func(t *testing.T) {
		p := Plane{B: 1, D: -2}
		require.InDelta(t, 1.0, p.DistanceToPoint(0, 3, 0), 1e-6)
		require.InDelta(t, -2.0, p.DistanceToPoint(0, 0, 0), 1e-6)
	})
}

func TestCamera(t *testing.T) {
	t.Run("eye orbits the origin", func(t *testing.T) {
		c := Camera{RotX: 0, RotY: 0, Zoom: 3}
		eye := c.Eye()
		require.InDelta(t, 0.0, eye.X, 1e-5)
		require.InDelta(t, 0.0, eye.Y, 1e-5)
		require.InDelta(t, 3.0, eye.Z, 1e-5)
	})

	t.Run("tilting raises the eye", func(t *testing.T) {
		c := Camera{RotX: 90, RotY: 0, Zoom: 2}
		eye := c.Eye()
		require.InDelta(t, 2.0, eye.Y, 1e-5)
	})

	t.Run("forward points at the origin", func(t *testing.T) {
		c := DefaultCamera()
		eye := c.Eye()
		forward := c.Forward()

		require.InDelta(t, 1.0, forward.Length(), 1e-5)
		require.Less(t, forward.Dot(eye), float32(0))
	})
}

func TestFrustumExtractFromCamera(t *testing.T) {
	t.Run("unextracted frustum passes everything", func(t *testing.T) {
		var f Frustum
		require.False(t, f.Extracted())
		require.True(t, f.IsPointVisible(1e6, 1e6, 1e6))
		require.True(t, f.IsSphereVisible(1e6, 0, 0, 1))
	})

	t.Run("turbine at the look-at point is visible", func(t *testing.T) {
		c := DefaultCamera()
		c.RotY = 45

		var f Frustum
		f.ExtractFromCamera(c)
		require.True(t, f.Extracted())
		require.True(t, f.IsPointVisible(0, 0.18, 0))
	})

	t.Run("point behind the camera is culled", func(t *testing.T) {
		c := DefaultCamera()
		c.RotY = 45

		var f Frustum
		f.ExtractFromCamera(c)
		require.False(t, f.IsPointVisible(0, 0.18, 500))
	})

	t.Run("vertical clipping stays permissive", func(t *testing.T) {
		var f Frustum
		f.ExtractFromCamera(DefaultCamera())

		require.True(t, f.Plane(PlaneTop).DistanceToPoint(0, 9, 0) > 0)
		require.True(t, f.Plane(PlaneBottom).DistanceToPoint(0, -9, 0) > 0)
	})
}

func TestFrustumSphereVisibility(t *testing.T) {
	var f Frustum
	f.ExtractFromCamera(DefaultCamera())

	t.Run("sphere at the origin is visible", func(t *testing.T) {
		require.True(t, f.IsSphereVisible(0, 0.05, 0, 0.1))
	})

	t.Run("sphere overlapping a plane is kept", func(t *testing.T) {
		// A sphere poking into the frustum from outside must never be
		// rejected.
		c := DefaultCamera()
		var frustum Frustum
		frustum.ExtractFromCamera(c)

		for _, probe := range []struct{ x, y, z, r float32 }{
			{0, 0, 0, 0.01},
			{0.2, 0.1, 0.2, 0.05},
			{-0.3, 0.1, -0.3, 0.5},
		} {
			if frustum.IsPointVisible(probe.x, probe.y, probe.z) {
				require.True(t, frustum.IsSphereVisible(probe.x, probe.y, probe.z, probe.r))
			}
		}
	})

	t.Run("distant sphere is culled", func(t *testing.T) {
		require.False(t, f.IsSphereVisible(0, 0, -500, 1))
	})
}

func TestFrustumExtractFromMatrices(t *testing.T) {
	c := DefaultCamera()
	projection := c.ProjectionMatrix()
	modelview := c.ViewMatrix()

	var f Frustum
	f.ExtractFromMatrices(projection, modelview)
	require.True(t, f.Extracted())

	t.Run("look-at point is visible", func(t *testing.T) {
		require.True(t, f.IsPointVisible(0, 0, 0))
	})

	t.Run("point behind the camera is culled", func(t *testing.T) {
		require.False(t, f.IsPointVisible(0, 0, 500))
	})

	t.Run("point far above the view cone is culled", func(t *testing.T) {
		require.False(t, f.IsPointVisible(0, 50, 0))
	})

	t.Run("agrees with the camera extraction near the center", func(t *testing.T) {
		var fc Frustum
		fc.ExtractFromCamera(c)

		for _, probe := range []struct{ x, y, z float32 }{
			{0, 0, 0},
			{0.1, 0.1, 0.1},
			{-0.2, 0.05, -0.1},
		} {
			require.Equal(t,
				fc.IsPointVisible(probe.x, probe.y, probe.z),
				f.IsPointVisible(probe.x, probe.y, probe.z),
			)
		}
	})
}

func TestFrustumAABBVisibility(t *testing.T) {
	var f Frustum
	f.ExtractFromCamera(DefaultCamera())

	t.Run("box around the origin is visible", func(t *testing.T) {
		require.True(t, f.IsAABBVisible(-0.1, 0.1, 0, 0.2, -0.1, 0.1))
	})

	t.Run("distant box is culled", func(t *testing.T) {
		require.False(t, f.IsAABBVisible(400, 401, 0, 1, 400, 401))
	})

	t.Run("box straddling a plane is kept", func(t *testing.T) {
		require.True(t, f.IsAABBVisible(-100, 100, 0, 1, -100, 100))
	})
}
