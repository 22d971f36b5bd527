package config

import (
	"fmt"

	"github.com/athabascarecon/ctrecon/internal/reconerr"
	"github.com/samber/lo"
)

var validSections = []string{"Input", "Output", "Projections", "Volume", "Reconstruction", "Software"}

var validKeysBySection = map[string][]string{
	"Input": {
		"RawProjectionsFile",
		"AttenuationProjectionsFile",
		"FilteredProjectionsFile",
		"DarkFieldFile",
		"BrightFieldFile",
		"PostScanBrightFieldFile",
	},
	"Output": {
		"AttenuationProjectionsFile",
		"FilteredProjectionsFile",
		"VolumeFile",
		"AttenuationCorrectionsFile",
	},
	"Projections": {
		"DataType",
		"Dimensions",
		"NumberOfProjections",
		"ProjectionAt180",
		"PixelSize",
		"CenterPixelU",
		"OffsetV",
		"ReverseRotation",
		"ProjectionStride",
	},
	"Volume": {
		"Dimensions",
		"VoxelSize",
		"Origin",
	},
	"Reconstruction": {
		"BadPixelCorrection",
		"FlatFieldBadThreshold",
		"DarkFieldBadThreshold",
		"BeamPowerCorrection",
		"BeamPowerDecayConstantTerm",
		"BeamPowerDecayLinearTerm",
		"ProjectionBackgroundEdgeWidth",
		"PixelInterpolation",
		"SmoothingFilter",
		"SmoothingFilterRadius",
		"SmoothingFilterFrequencies",
		"ScalingFactor",
	},
	"Software": {
		"Engine",
		"Threads",
		"MaximumVolumeMemory",
		"FilteringModule",
	},
}

// checkForUnknownSections rejects any section name not in
// validSections, naming the offending section.
func checkForUnknownSections(tree *rawTree) error {
	for _, name := range tree.order {
		if !lo.Contains(validSections, name) {
			return reconerr.NewConfigurationError("", fmt.Errorf("unrecognized section in configuration: %s", name))
		}
	}
	return nil
}

// checkForUnknownKeys rejects any key in the named section that is
// not in its allow-list, naming "Section.Key".
func checkForUnknownKeys(tree *rawTree, section string) error {
	s, ok := tree.sections[section]
	if !ok {
		return nil
	}
	allowed := validKeysBySection[section]
	for _, key := range s.order {
		if !lo.Contains(allowed, key) {
			return reconerr.NewConfigurationError("", fmt.Errorf("unrecognized key in configuration: %s.%s", section, key))
		}
	}
	return nil
}
