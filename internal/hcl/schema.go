package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is decoded from every workflow file.
type fileRoot struct {
	Model         *string       `hcl:"model,optional"`
	OutDir        *string       `hcl:"out_dir,optional"`
	Workers       *int          `hcl:"workers,optional"`
	Pool          *string       `hcl:"pool,optional"`
	Reports       []string      `hcl:"reports,optional"`
	Simulations   []string      `hcl:"simulations,optional"`
	MultiThreaded *bool         `hcl:"multithreaded,optional"`
	WebData       *string       `hcl:"web_data,optional"`
	WeatherSource *string       `hcl:"weather_source,optional"`
	SoilConfig    *string       `hcl:"soil_config,optional"`
	SoilThickness []float64     `hcl:"soil_thickness,optional"`
	Progress      *progressBody `hcl:"progress,block"`
	Edits         []*editBlock  `hcl:"edit,block"`
	Points        []*pointBlock `hcl:"point,block"`
}

type progressBody struct {
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	Event              string `hcl:"event,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}

// editBlock holds free-form field values; its attributes are the node's
// field names.
type editBlock struct {
	Path string   `hcl:"path,label"`
	Body hcl.Body `hcl:",remain"`
}

type pointBlock struct {
	Name  string       `hcl:"name,label"`
	Lon   float64      `hcl:"lon"`
	Lat   float64      `hcl:"lat"`
	Edits []*editBlock `hcl:"edit,block"`
}
