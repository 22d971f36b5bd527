// Package config parses and validates the reconstruction pipeline's
// section-and-key configuration file: defaults are resolved the same
// way the original engine resolved them (RequireParameter /
// OptionalParameter), and every section/key is checked against an
// explicit allow-list so a typo is rejected by name rather than
// silently ignored.
package config

import (
	"fmt"
	"os"

	"github.com/athabascarecon/ctrecon/internal/reconerr"
	"github.com/athabascarecon/ctrecon/internal/sysmem"
)

// Load reads, parses, defaults, and validates the configuration file
// at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, reconerr.NewConfigurationError("", fmt.Errorf("opening %s: %w", path, err))
	}
	defer f.Close()

	tree, err := parseINI(f)
	if err != nil {
		return nil, err
	}
	return resolve(tree)
}

func resolve(tree *rawTree) (*Config, error) {
	if err := checkForUnknownSections(tree); err != nil {
		return nil, err
	}

	var cfg Config
	if err := resolveInput(tree, &cfg.Input); err != nil {
		return nil, err
	}
	if err := resolveOutput(tree, &cfg); err != nil {
		return nil, err
	}
	if err := resolveProjections(tree, &cfg.Projections); err != nil {
		return nil, err
	}
	if err := resolveVolume(tree, &cfg); err != nil {
		return nil, err
	}
	if err := resolveReconstruction(tree, &cfg); err != nil {
		return nil, err
	}
	if err := resolveSoftware(tree, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func get(tree *rawTree, section, key string) (string, bool) {
	return tree.get(section, key)
}

func requireString(tree *rawTree, section, key string) (string, error) {
	v, ok := get(tree, section, key)
	if !ok {
		return "", reconerr.NewConfigurationError(section+"."+key, fmt.Errorf("missing required parameter"))
	}
	return v, nil
}

func resolveInput(tree *rawTree, in *Input) error {
	if err := checkForUnknownKeys(tree, "Input"); err != nil {
		return err
	}

	raw, hasRaw := get(tree, "Input", "RawProjectionsFile")
	atten, hasAtten := get(tree, "Input", "AttenuationProjectionsFile")
	filt, hasFilt := get(tree, "Input", "FilteredProjectionsFile")

	count := 0
	for _, has := range []bool{hasRaw, hasAtten, hasFilt} {
		if has {
			count++
		}
	}
	if count != 1 {
		return reconerr.NewConfigurationError("Input", fmt.Errorf(
			"require exactly one of RawProjectionsFile, AttenuationProjectionsFile, and FilteredProjectionsFile"))
	}

	in.RawProjectionsFile = raw
	in.AttenuationProjectionsFile = atten
	in.FilteredProjectionsFile = filt
	in.DarkFieldFile, _ = get(tree, "Input", "DarkFieldFile")
	in.BrightFieldFile, _ = get(tree, "Input", "BrightFieldFile")
	in.PostScanBrightFieldFile, _ = get(tree, "Input", "PostScanBrightFieldFile")
	return nil
}

func resolveOutput(tree *rawTree, cfg *Config) error {
	if err := checkForUnknownKeys(tree, "Output"); err != nil {
		return err
	}

	atten, hasOutAtten := get(tree, "Output", "AttenuationProjectionsFile")
	filt, hasOutFilt := get(tree, "Output", "FilteredProjectionsFile")
	vol, hasVol := get(tree, "Output", "VolumeFile")
	corr, hasCorr := get(tree, "Output", "AttenuationCorrectionsFile")

	if cfg.Input.AttenuationProjectionsFile != "" && hasOutAtten {
		return reconerr.NewConfigurationError("Output.AttenuationProjectionsFile",
			fmt.Errorf("cannot specify both Input.AttenuationProjectionsFile and Output.AttenuationProjectionsFile"))
	}
	if cfg.Input.FilteredProjectionsFile != "" && hasOutFilt {
		return reconerr.NewConfigurationError("Output.FilteredProjectionsFile",
			fmt.Errorf("cannot specify both Input.FilteredProjectionsFile and Output.FilteredProjectionsFile"))
	}
	if cfg.Input.FilteredProjectionsFile != "" && hasOutAtten {
		return reconerr.NewConfigurationError("Output.AttenuationProjectionsFile",
			fmt.Errorf("cannot specify both Input.FilteredProjectionsFile and Output.AttenuationProjectionsFile"))
	}
	if !hasOutAtten && !hasOutFilt && !hasVol && !hasCorr {
		return reconerr.NewConfigurationError("Output", fmt.Errorf("at least one Output file must be specified"))
	}

	cfg.Output.AttenuationProjectionsFile = atten
	cfg.Output.FilteredProjectionsFile = filt
	cfg.Output.VolumeFile = vol
	cfg.Output.AttenuationCorrectionsFile = corr
	return nil
}

func resolveProjections(tree *rawTree, p *Projections) error {
	dtStr, err := requireString(tree, "Projections", "DataType")
	if err != nil {
		return err
	}
	dt := DataType(dtStr)
	if !dt.valid() {
		return invalidEnum("Projections.DataType", dtStr)
	}
	p.DataType = dt

	dimsStr, err := requireString(tree, "Projections", "Dimensions")
	if err != nil {
		return err
	}
	dims, err := parseIntTuple("Projections.Dimensions", dimsStr, 2)
	if err != nil {
		return err
	}
	p.Dimensions = [2]int{dims[0], dims[1]}

	numStr, err := requireString(tree, "Projections", "NumberOfProjections")
	if err != nil {
		return err
	}
	n, err := parseInt("Projections.NumberOfProjections", numStr)
	if err != nil {
		return err
	}
	p.NumberOfProjections = n

	pxStr, err := requireString(tree, "Projections", "PixelSize")
	if err != nil {
		return err
	}
	px, err := parseFloatTuple("Projections.PixelSize", pxStr, 2)
	if err != nil {
		return err
	}
	p.PixelSize = [2]float64{px[0], px[1]}

	p.CenterPixelU = float64(p.Dimensions[0]-1) / 2.0
	if v, ok := get(tree, "Projections", "CenterPixelU"); ok {
		if p.CenterPixelU, err = parseFloat("Projections.CenterPixelU", v); err != nil {
			return err
		}
	}

	p.OffsetV = -p.PixelSize[1] * float64(p.Dimensions[1]-1) / 2.0
	if v, ok := get(tree, "Projections", "OffsetV"); ok {
		if p.OffsetV, err = parseFloat("Projections.OffsetV", v); err != nil {
			return err
		}
	}

	p.ReverseRotation = false
	if v, ok := get(tree, "Projections", "ReverseRotation"); ok {
		if p.ReverseRotation, err = parseBool("Projections.ReverseRotation", v); err != nil {
			return err
		}
	}

	p.ProjectionAt180 = true
	if v, ok := get(tree, "Projections", "ProjectionAt180"); ok {
		if p.ProjectionAt180, err = parseBool("Projections.ProjectionAt180", v); err != nil {
			return err
		}
	}

	p.ProjectionStride = 1
	if v, ok := get(tree, "Projections", "ProjectionStride"); ok {
		if p.ProjectionStride, err = parseInt("Projections.ProjectionStride", v); err != nil {
			return err
		}
	}

	return checkForUnknownKeys(tree, "Projections")
}

func resolveVolume(tree *rawTree, cfg *Config) error {
	if cfg.Output.VolumeFile != "" {
		v := &cfg.Volume
		px := cfg.Projections.PixelSize

		v.VoxelSize = [3]float64{px[0], px[0], px[0]}
		if vs, ok := get(tree, "Volume", "VoxelSize"); ok {
			parsed, err := parseFloatTuple("Volume.VoxelSize", vs, 3)
			if err != nil {
				return err
			}
			v.VoxelSize = [3]float64{parsed[0], parsed[1], parsed[2]}
		} else if px[0] != px[1] {
			return reconerr.NewConfigurationError("Volume.VoxelSize",
				fmt.Errorf("required when Projections.PixelSize is not square"))
		}

		projDims := cfg.Projections.Dimensions
		defaultDims := [3]int{
			int(float64(projDims[0])*px[0]/v.VoxelSize[0] + 0.5),
			int(float64(projDims[1])*px[1]/v.VoxelSize[1] + 0.5),
			int(float64(projDims[1])*px[1]/v.VoxelSize[2] + 0.5),
		}
		v.Dimensions = defaultDims
		if ds, ok := get(tree, "Volume", "Dimensions"); ok {
			parsed, err := parseIntTuple("Volume.Dimensions", ds, 3)
			if err != nil {
				return err
			}
			v.Dimensions = [3]int{parsed[0], parsed[1], parsed[2]}
		}

		v.Origin = [3]float64{
			-0.5 * float64(v.Dimensions[0]-1) * v.VoxelSize[0],
			-0.5 * float64(v.Dimensions[1]-1) * v.VoxelSize[1],
			-0.5 * float64(v.Dimensions[2]-1) * v.VoxelSize[2],
		}
		if os, ok := get(tree, "Volume", "Origin"); ok {
			parsed, err := parseFloatTuple("Volume.Origin", os, 3)
			if err != nil {
				return err
			}
			v.Origin = [3]float64{parsed[0], parsed[1], parsed[2]}
		}
	}

	return checkForUnknownKeys(tree, "Volume")
}

func resolveReconstruction(tree *rawTree, cfg *Config) error {
	r := &cfg.Reconstruction

	if cfg.Input.RawProjectionsFile != "" {
		r.BadPixelCorrection = BadPixelCorrectionAveraging
		if v, ok := get(tree, "Reconstruction", "BadPixelCorrection"); ok {
			r.BadPixelCorrection = BadPixelCorrection(v)
		}
		if !r.BadPixelCorrection.valid() {
			return invalidEnum("Reconstruction.BadPixelCorrection", string(r.BadPixelCorrection))
		}
		if r.BadPixelCorrection != BadPixelCorrectionNone {
			r.FlatFieldBadThreshold = 10
			if v, ok := get(tree, "Reconstruction", "FlatFieldBadThreshold"); ok {
				var err error
				if r.FlatFieldBadThreshold, err = parseFloat("Reconstruction.FlatFieldBadThreshold", v); err != nil {
					return err
				}
			}

			r.DarkFieldBadThreshold = 10
			if v, ok := get(tree, "Reconstruction", "DarkFieldBadThreshold"); ok {
				var err error
				if r.DarkFieldBadThreshold, err = parseFloat("Reconstruction.DarkFieldBadThreshold", v); err != nil {
					return err
				}
			}
		}

		normOpt := BeamPowerCorrectionNone
		if v, ok := get(tree, "Reconstruction", "BeamPowerCorrection"); ok {
			normOpt = BeamPowerCorrection(v)
		}
		if normOpt == beamPowerCorrectionZeroProjectionEdgeAlias {
			normOpt = BeamPowerCorrectionNullProjectionEdge
		}
		if !normOpt.valid() {
			return invalidEnum("Reconstruction.BeamPowerCorrection", string(normOpt))
		}
		r.BeamPowerCorrection = normOpt

		switch normOpt {
		case BeamPowerCorrectionManual:
			r.BeamPowerDecayConstantTerm = 0
			if v, ok := get(tree, "Reconstruction", "BeamPowerDecayConstantTerm"); ok {
				var err error
				if r.BeamPowerDecayConstantTerm, err = parseFloat("Reconstruction.BeamPowerDecayConstantTerm", v); err != nil {
					return err
				}
			}
			v, ok := get(tree, "Reconstruction", "BeamPowerDecayLinearTerm")
			if !ok {
				return reconerr.NewConfigurationError("Reconstruction.BeamPowerDecayLinearTerm",
					fmt.Errorf("required when Reconstruction.BeamPowerCorrection=Manual"))
			}
			var err error
			if r.BeamPowerDecayLinearTerm, err = parseFloat("Reconstruction.BeamPowerDecayLinearTerm", v); err != nil {
				return err
			}
		case BeamPowerCorrectionBeforeAndAfterBrightField:
			r.BeamPowerDecayConstantTerm = 0
			if v, ok := get(tree, "Reconstruction", "BeamPowerDecayConstantTerm"); ok {
				var err error
				if r.BeamPowerDecayConstantTerm, err = parseFloat("Reconstruction.BeamPowerDecayConstantTerm", v); err != nil {
					return err
				}
			}
			if cfg.Input.PostScanBrightFieldFile == "" {
				return reconerr.NewConfigurationError("Input.PostScanBrightFieldFile",
					fmt.Errorf("required when Reconstruction.BeamPowerCorrection=BeforeAndAfterBrightField"))
			}
		case BeamPowerCorrectionNullProjectionEdge:
			r.ProjectionBackgroundEdgeWidth = 10
			if v, ok := get(tree, "Reconstruction", "ProjectionBackgroundEdgeWidth"); ok {
				var err error
				if r.ProjectionBackgroundEdgeWidth, err = parseInt("Reconstruction.ProjectionBackgroundEdgeWidth", v); err != nil {
					return err
				}
			}
			if _, ok := get(tree, "Reconstruction", "BeamPowerDecayConstantTerm"); ok {
				return reconerr.NewConfigurationError("Reconstruction.BeamPowerDecayConstantTerm",
					fmt.Errorf("cannot be specified with Reconstruction.BeamPowerCorrection=NullProjectionEdge"))
			}
		case BeamPowerCorrectionConstantTotalAttenuation:
			r.BeamPowerDecayConstantTerm = 0
			if v, ok := get(tree, "Reconstruction", "BeamPowerDecayConstantTerm"); ok {
				var err error
				if r.BeamPowerDecayConstantTerm, err = parseFloat("Reconstruction.BeamPowerDecayConstantTerm", v); err != nil {
					return err
				}
			}
		}
	}

	if cfg.Output.VolumeFile != "" {
		r.PixelInterpolation = PixelInterpolationBilinearWithFallback
		if v, ok := get(tree, "Reconstruction", "PixelInterpolation"); ok {
			r.PixelInterpolation = PixelInterpolation(v)
		}
		if !r.PixelInterpolation.valid() {
			return invalidEnum("Reconstruction.PixelInterpolation", string(r.PixelInterpolation))
		}
	}

	r.SmoothingFilter = SmoothingFilterGaussian
	if v, ok := get(tree, "Reconstruction", "SmoothingFilter"); ok {
		r.SmoothingFilter = SmoothingFilter(v)
	}
	if !r.SmoothingFilter.valid() {
		return invalidEnum("Reconstruction.SmoothingFilter", string(r.SmoothingFilter))
	}

	switch r.SmoothingFilter {
	case SmoothingFilterGaussian:
		r.SmoothingFilterRadius = 0.5
		if v, ok := get(tree, "Reconstruction", "SmoothingFilterRadius"); ok {
			var err error
			if r.SmoothingFilterRadius, err = parseFloat("Reconstruction.SmoothingFilterRadius", v); err != nil {
				return err
			}
		}
		if _, ok := get(tree, "Reconstruction", "SmoothingFilterFrequencies"); ok {
			return reconerr.NewConfigurationError("Reconstruction.SmoothingFilterFrequencies",
				fmt.Errorf("cannot be used with Gaussian; use SmoothingFilterRadius instead"))
		}
	case SmoothingFilterTaperedCosineWindow:
		v, ok := get(tree, "Reconstruction", "SmoothingFilterFrequencies")
		if !ok {
			return reconerr.NewConfigurationError("Reconstruction.SmoothingFilterFrequencies",
				fmt.Errorf("required when Reconstruction.SmoothingFilter=TaperedCosineWindow"))
		}
		freqs, err := parseFloatTuple("Reconstruction.SmoothingFilterFrequencies", v, 2)
		if err != nil {
			return err
		}
		r.SmoothingFilterFrequencies = [2]float64{freqs[0], freqs[1]}
		if _, ok := get(tree, "Reconstruction", "SmoothingFilterRadius"); ok {
			return reconerr.NewConfigurationError("Reconstruction.SmoothingFilterRadius",
				fmt.Errorf("cannot be used with TaperedCosineWindow; use SmoothingFilterFrequencies instead"))
		}
	}

	r.ScalingFactor = 1.0
	if v, ok := get(tree, "Reconstruction", "ScalingFactor"); ok {
		var err error
		if r.ScalingFactor, err = parseFloat("Reconstruction.ScalingFactor", v); err != nil {
			return err
		}
	}

	return checkForUnknownKeys(tree, "Reconstruction")
}

func resolveSoftware(tree *rawTree, cfg *Config) error {
	s := &cfg.Software

	s.Engine = EngineMultiThreaded
	if v, ok := get(tree, "Software", "Engine"); ok {
		s.Engine = Engine(v)
	}
	if !s.Engine.valid() {
		return invalidEnum("Software.Engine", string(s.Engine))
	}

	if s.Engine == EngineMultiThreaded {
		s.Threads = 0 // Automatic
		if v, ok := get(tree, "Software", "Threads"); ok && v != "Automatic" {
			n, err := parseInt("Software.Threads", v)
			if err != nil {
				return err
			}
			if n < 1 {
				return reconerr.NewConfigurationError("Software.Threads", fmt.Errorf("must be a number greater than 0"))
			}
			s.Threads = n
		}
	} else {
		s.Threads = 1
	}

	if cfg.Output.VolumeFile != "" {
		v, ok := get(tree, "Software", "MaximumVolumeMemory")
		if !ok || v == "Automatic" {
			s.MaximumVolumeMemory = sysmem.AutomaticVolumeMemory()
		} else {
			automatic, bytes, err := parseMemory("Software.MaximumVolumeMemory", v)
			if err != nil {
				return err
			}
			if automatic {
				s.MaximumVolumeMemory = sysmem.AutomaticVolumeMemory()
			} else {
				s.MaximumVolumeMemory = bytes
			}
		}
	}

	if cfg.Input.FilteredProjectionsFile == "" {
		s.FilteringModule = FilteringModuleRealSpaceConvolution
		if v, ok := get(tree, "Software", "FilteringModule"); ok {
			s.FilteringModule = FilteringModule(v)
		}
		if !s.FilteringModule.valid() {
			return invalidEnum("Software.FilteringModule", string(s.FilteringModule))
		}
	}

	return checkForUnknownKeys(tree, "Software")
}
