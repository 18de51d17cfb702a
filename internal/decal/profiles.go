package decal

// Vec3 is a world-space position for a decal projected onto a product mesh.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Profile is the per-product placement configuration. Width and Height are
// the intrinsic dimensions of the printable area used for 2D previews.
// Base, AxisX and AxisY define the 3D mapping: a normalized (x, y) becomes
// Base + AxisX*(x-0.5) + AxisY*(y-0.5), so (0.5, 0.5) lands on Base and the
// axis vectors bound how far the decal can travel in each direction.
type Profile struct {
	ProductType string  `json:"product_type"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	MinScale    float64 `json:"min_scale"`
	MaxScale    float64 `json:"max_scale"`
	Base        Vec3    `json:"base"`
	AxisX       Vec3    `json:"axis_x"`
	AxisY       Vec3    `json:"axis_y"`
}

// defaultProfiles covers the product types the shops currently offer.
// New products get an entry here; unknown types fall back to fallbackProfile.
var defaultProfiles = map[string]Profile{
	"tshirt": {
		ProductType: "tshirt",
		Width:       420, Height: 560,
		MinScale: 0.1, MaxScale: 0.6,
		Base:  Vec3{X: 0, Y: 0.04, Z: 0.12},
		AxisX: Vec3{X: 0.22, Y: 0, Z: 0},
		AxisY: Vec3{X: 0, Y: 0.30, Z: 0},
	},
	"mug": {
		ProductType: "mug",
		Width:       300, Height: 300,
		MinScale: 0.15, MaxScale: 0.5,
		Base:  Vec3{X: 0, Y: 0.05, Z: 0.045},
		AxisX: Vec3{X: 0.06, Y: 0, Z: 0},
		AxisY: Vec3{X: 0, Y: 0.05, Z: 0},
	},
	"tumbler": {
		ProductType: "tumbler",
		Width:       260, Height: 420,
		MinScale: 0.15, MaxScale: 0.45,
		Base:  Vec3{X: 0, Y: 0.09, Z: 0.04},
		AxisX: Vec3{X: 0.05, Y: 0, Z: 0},
		AxisY: Vec3{X: 0, Y: 0.08, Z: 0},
	},
	"poster": {
		ProductType: "poster",
		Width:       594, Height: 841,
		MinScale: 0.1, MaxScale: 1.0,
		Base:  Vec3{X: 0, Y: 0, Z: 0.001},
		AxisX: Vec3{X: 0.26, Y: 0, Z: 0},
		AxisY: Vec3{X: 0, Y: 0.38, Z: 0},
	},
	"business-card": {
		ProductType: "business-card",
		Width:       90, Height: 54,
		MinScale: 0.2, MaxScale: 0.9,
		Base:  Vec3{X: 0, Y: 0, Z: 0.001},
		AxisX: Vec3{X: 0.038, Y: 0, Z: 0},
		AxisY: Vec3{X: 0, Y: 0.022, Z: 0},
	},
	"phone-case": {
		ProductType: "phone-case",
		Width:       75, Height: 158,
		MinScale: 0.15, MaxScale: 0.8,
		Base:  Vec3{X: 0, Y: 0, Z: 0.006},
		AxisX: Vec3{X: 0.028, Y: 0, Z: 0},
		AxisY: Vec3{X: 0, Y: 0.062, Z: 0},
	},
}

var fallbackProfile = Profile{
	ProductType: "generic",
	Width:       400, Height: 400,
	MinScale: 0.1, MaxScale: 1.0,
	Base:  Vec3{X: 0, Y: 0, Z: 0.001},
	AxisX: Vec3{X: 0.2, Y: 0, Z: 0},
	AxisY: Vec3{X: 0, Y: 0.2, Z: 0},
}
