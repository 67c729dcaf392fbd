package apsimx

import (
	"fmt"
	"strconv"
)

// LayerCount returns the number of soil layers a soil section node spans.
// SoilCrop nodes carry no Thickness of their own and inherit the layering
// of their parent Physical node.
func LayerCount(n *Node) (int, error) {
	src := n
	if n.Kind() == "SoilCrop" {
		if src = n.Ancestor("Physical"); src == nil {
			return 0, fmt.Errorf("SoilCrop %q has no Physical ancestor", n.Name)
		}
	}
	thickness, err := src.Float64s("Thickness")
	if err != nil {
		return 0, err
	}
	if len(thickness) == 0 {
		return 0, fmt.Errorf("%s %q has no Thickness", src.Kind(), src.Name)
	}
	return len(thickness), nil
}

// DepthLabels renders the engine's "top-bottom" depth strings (mm) for a
// thickness profile, e.g. [150 150] -> ["0-150" "150-300"].
func DepthLabels(thickness []float64) []string {
	labels := make([]string, len(thickness))
	top := 0.0
	for i, t := range thickness {
		bottom := top + t
		labels[i] = formatDepth(top) + "-" + formatDepth(bottom)
		top = bottom
	}
	return labels
}

func formatDepth(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
