// Package decal converts normalized design-editor coordinates into the
// placements consumed by the flat and volumetric product previews. All
// mappings are pure functions of their inputs; the same (x, y, scale)
// always produces the identical placement.
package decal

// Placement2D positions a decal image inside a flat product preview.
// ImageLeft/ImageTop are offsets from the container's top-left corner.
type Placement2D struct {
	ImageWidth  float64 `json:"image_width"`
	ImageHeight float64 `json:"image_height"`
	ImageLeft   float64 `json:"image_left"`
	ImageTop    float64 `json:"image_top"`
}

// Mapper resolves product placement profiles. Unknown product types get a
// generic profile rather than an error so a new product renders before its
// profile is tuned.
type Mapper struct {
	profiles map[string]Profile
}

func NewMapper() *Mapper {
	return &Mapper{profiles: defaultProfiles}
}

// NewMapperWithProfiles builds a mapper from shop-configured profiles,
// keyed by product type.
func NewMapperWithProfiles(profiles []Profile) *Mapper {
	m := &Mapper{profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		m.profiles[p.ProductType] = p
	}
	return m
}

// Profile returns the placement profile for a product type.
func (m *Mapper) Profile(productType string) Profile {
	if p, ok := m.profiles[productType]; ok {
		return p
	}
	return fallbackProfile
}

// ClampScale bounds an interactively-set scale into the product's allowed
// range. Out-of-range values clamp silently; scaling is a drag interaction
// and overshoot is not an error.
func (p Profile) ClampScale(scale float64) float64 {
	if scale < p.MinScale {
		return p.MinScale
	}
	if scale > p.MaxScale {
		return p.MaxScale
	}
	return scale
}

// containerMargin leaves breathing room around the product inside the
// editor viewport.
const containerMargin = 0.9

// FitContainer fits the product's intrinsic dimensions into the viewport,
// preserving aspect ratio, scaled down by the editor margin. The result is
// the (W, H) the 2D placement math runs against.
func FitContainer(intrinsicW, intrinsicH, viewportW, viewportH float64) (float64, float64) {
	if intrinsicW <= 0 || intrinsicH <= 0 || viewportW <= 0 || viewportH <= 0 {
		return 0, 0
	}
	ratio := viewportW / intrinsicW
	if r := viewportH / intrinsicH; r < ratio {
		ratio = r
	}
	ratio *= containerMargin
	return intrinsicW * ratio, intrinsicH * ratio
}

// Map2D converts a normalized y-up position and a clamped scale into a flat
// preview placement. x and y are fractions of the free travel, so the decal
// never leaves the container: y=1 puts the decal flush with the top edge,
// y=0 flush with the bottom. The y axis inverts because screen coordinates
// grow downward.
func Map2D(containerW, containerH, x, y, scale float64) Placement2D {
	imageWidth := containerW * scale
	imageHeight := containerH * scale
	return Placement2D{
		ImageWidth:  imageWidth,
		ImageHeight: imageHeight,
		ImageLeft:   (containerW - imageWidth) * x,
		ImageTop:    (containerH - imageHeight) * (1 - y),
	}
}

// Place3D converts the same normalized position into a world-space decal
// position on the product mesh. (0.5, 0.5) is the profile's base point; the
// axis vectors bound the travel in each direction.
func (p Profile) Place3D(x, y float64) Vec3 {
	dx := x - 0.5
	dy := y - 0.5
	return Vec3{
		X: p.Base.X + p.AxisX.X*dx + p.AxisY.X*dy,
		Y: p.Base.Y + p.AxisX.Y*dx + p.AxisY.Y*dy,
		Z: p.Base.Z + p.AxisX.Z*dx + p.AxisY.Z*dy,
	}
}
