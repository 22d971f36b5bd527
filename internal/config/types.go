package config

import (
	"fmt"

	"github.com/athabascarecon/ctrecon/internal/reconerr"
	"github.com/samber/lo"
)

// DataType names a raw projection pixel type, matching the original
// engine's DataType_t token set.
type DataType string

const (
	DataTypeInt8    DataType = "INT8"
	DataTypeUInt8   DataType = "UINT8"
	DataTypeInt16   DataType = "INT16"
	DataTypeUInt16  DataType = "UINT16"
	DataTypeInt32   DataType = "INT32"
	DataTypeUInt32  DataType = "UINT32"
	DataTypeFloat32 DataType = "FLOAT32"
	DataTypeFloat64 DataType = "FLOAT64"
)

var validDataTypes = []DataType{
	DataTypeInt8, DataTypeUInt8, DataTypeInt16, DataTypeUInt16,
	DataTypeInt32, DataTypeUInt32, DataTypeFloat32, DataTypeFloat64,
}

func (d DataType) valid() bool {
	return lo.Contains(validDataTypes, d)
}

// BadPixelCorrection selects whether bad pixels are replaced by an
// averaged good-neighbour table or left untouched.
type BadPixelCorrection string

const (
	BadPixelCorrectionAveraging BadPixelCorrection = "Averaging"
	BadPixelCorrectionNone      BadPixelCorrection = "None"
)

func (b BadPixelCorrection) valid() bool {
	return b == BadPixelCorrectionAveraging || b == BadPixelCorrectionNone
}

// BeamPowerCorrection selects the beam-power normalisation variant.
type BeamPowerCorrection string

const (
	BeamPowerCorrectionNone                     BeamPowerCorrection = "None"
	BeamPowerCorrectionManual                   BeamPowerCorrection = "Manual"
	BeamPowerCorrectionBeforeAndAfterBrightField BeamPowerCorrection = "BeforeAndAfterBrightField"
	BeamPowerCorrectionConstantTotalAttenuation  BeamPowerCorrection = "ConstantTotalAttenuation"
	BeamPowerCorrectionNullProjectionEdge        BeamPowerCorrection = "NullProjectionEdge"
	// beamPowerCorrectionZeroProjectionEdgeAlias is the deprecated spelling
	// the original engine silently rewrote to NullProjectionEdge.
	beamPowerCorrectionZeroProjectionEdgeAlias BeamPowerCorrection = "ZeroProjectionEdgeAttenuation"
)

func (b BeamPowerCorrection) valid() bool {
	switch b {
	case BeamPowerCorrectionNone, BeamPowerCorrectionManual, BeamPowerCorrectionBeforeAndAfterBrightField,
		BeamPowerCorrectionConstantTotalAttenuation, BeamPowerCorrectionNullProjectionEdge:
		return true
	default:
		return false
	}
}

// PixelInterpolation selects the back-projection sampling strategy.
type PixelInterpolation string

const (
	PixelInterpolationNearestNeighbor      PixelInterpolation = "NearestNeighbor"
	PixelInterpolationBilinear             PixelInterpolation = "Bilinear"
	PixelInterpolationBilinearWithFallback PixelInterpolation = "BilinearWithFallback"
)

func (p PixelInterpolation) valid() bool {
	switch p {
	case PixelInterpolationNearestNeighbor, PixelInterpolationBilinear, PixelInterpolationBilinearWithFallback:
		return true
	default:
		return false
	}
}

// SmoothingFilter selects the apodizing transfer function applied on
// top of the ramp kernel.
type SmoothingFilter string

const (
	SmoothingFilterNone               SmoothingFilter = "None"
	SmoothingFilterGaussian            SmoothingFilter = "Gaussian"
	SmoothingFilterTaperedCosineWindow SmoothingFilter = "TaperedCosineWindow"
)

func (s SmoothingFilter) valid() bool {
	switch s {
	case SmoothingFilterNone, SmoothingFilterGaussian, SmoothingFilterTaperedCosineWindow:
		return true
	default:
		return false
	}
}

// Engine selects single- versus multi-threaded reconstruction.
type Engine string

const (
	EngineSingleThreaded Engine = "SingleThreaded"
	EngineMultiThreaded  Engine = "MultiThreaded"
)

func (e Engine) valid() bool {
	return e == EngineSingleThreaded || e == EngineMultiThreaded
}

// FilteringModule selects the projection-filter back-end. vDSP and
// FFTW are the original's two native FFT libraries; this port maps
// them onto the two available pure-Go FFT libraries (see
// internal/filter) rather than refusing them as unsupported.
type FilteringModule string

const (
	FilteringModuleRealSpaceConvolution FilteringModule = "RealSpaceConvolution"
	FilteringModuleFFTW                 FilteringModule = "FFTW"
	FilteringModuleVDSP                 FilteringModule = "vDSP"
)

func (f FilteringModule) valid() bool {
	switch f {
	case FilteringModuleRealSpaceConvolution, FilteringModuleFFTW, FilteringModuleVDSP:
		return true
	default:
		return false
	}
}

// Input names the raw/attenuation/filtered input projection file and
// optional calibration fields.
type Input struct {
	RawProjectionsFile         string
	AttenuationProjectionsFile string
	FilteredProjectionsFile    string
	DarkFieldFile              string
	BrightFieldFile            string
	PostScanBrightFieldFile    string
}

// Output names the intermediate/final output files; at least one must
// be set and none may collide with the corresponding Input file.
type Output struct {
	AttenuationProjectionsFile string
	FilteredProjectionsFile    string
	VolumeFile                 string
	AttenuationCorrectionsFile string
}

// Projections describes the acquisition geometry.
type Projections struct {
	DataType            DataType
	Dimensions          [2]int // (u, v)
	NumberOfProjections int
	ProjectionAt180     bool
	PixelSize           [2]float64 // (u, v)
	CenterPixelU        float64
	OffsetV             float64
	ReverseRotation     bool
	ProjectionStride    int
}

// Volume describes the reconstructed volume geometry.
type Volume struct {
	Dimensions [3]int     // (z, y, x)
	VoxelSize  [3]float64 // (z, y, x)
	Origin     [3]float64 // (z, y, x)
}

// Reconstruction holds every per-stage reconstruction parameter.
type Reconstruction struct {
	BadPixelCorrection            BadPixelCorrection
	FlatFieldBadThreshold         float64
	DarkFieldBadThreshold         float64
	BeamPowerCorrection           BeamPowerCorrection
	BeamPowerDecayConstantTerm    float64
	BeamPowerDecayLinearTerm      float64
	ProjectionBackgroundEdgeWidth int
	PixelInterpolation            PixelInterpolation
	SmoothingFilter               SmoothingFilter
	SmoothingFilterRadius         float64
	SmoothingFilterFrequencies    [2]float64
	ScalingFactor                 float64
}

// Software holds engine/threading/memory/filtering-back-end settings.
type Software struct {
	Engine              Engine
	Threads             int // 0 means Automatic (runtime.NumCPU())
	MaximumVolumeMemory int64
	FilteringModule     FilteringModule
}

// Config is the fully resolved, defaulted, and validated
// configuration for one reconstruction run.
type Config struct {
	Input          Input
	Output         Output
	Projections    Projections
	Volume         Volume
	Reconstruction Reconstruction
	Software       Software
}

func invalidEnum(key string, value string) error {
	return reconerr.NewConfigurationError(key, fmt.Errorf("invalid value %q", value))
}
