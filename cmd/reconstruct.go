package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"runtime"

	"github.com/athabascarecon/ctrecon/internal/atten"
	"github.com/athabascarecon/ctrecon/internal/backproject"
	"github.com/athabascarecon/ctrecon/internal/badpixel"
	"github.com/athabascarecon/ctrecon/internal/beampower"
	"github.com/athabascarecon/ctrecon/internal/calib"
	"github.com/athabascarecon/ctrecon/internal/config"
	"github.com/athabascarecon/ctrecon/internal/filter"
	"github.com/athabascarecon/ctrecon/internal/geom"
	"github.com/athabascarecon/ctrecon/internal/interp"
	"github.com/athabascarecon/ctrecon/internal/reconerr"
	"github.com/athabascarecon/ctrecon/internal/runner"
	"github.com/athabascarecon/ctrecon/internal/smooth"
	"github.com/athabascarecon/ctrecon/internal/streamio"
	"github.com/athabascarecon/ctrecon/internal/subvolume"
)

// runReconstruction loads configPath, optionally dumps the resolved
// configuration as JSON instead of reconstructing, and otherwise
// dispatches to the entry point named by Input: RawProjectionsFile
// (the full four-stage pipeline), AttenuationProjectionsFile (skips
// raw-to-attenuation conversion and its calibration/bad-pixel/
// beam-power stages), or FilteredProjectionsFile (back-projection
// only).
func runReconstruction(ctx context.Context, configPath string, dumpOnly bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if dumpOnly {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	if cfg.Input.RawProjectionsFile != "" {
		return runRawByDataType(ctx, cfg)
	}
	return runAttenuationOrFiltered(ctx, cfg)
}

func projectionGeometry(p config.Projections) (geom.Dims, geom.Spacing, geom.Origin) {
	dims := geom.NewTuple(p.Dimensions[0], p.Dimensions[1])
	spacing := geom.Spacing{p.PixelSize[0], p.PixelSize[1]}
	origin := geom.Origin{-p.CenterPixelU * p.PixelSize[0], p.OffsetV}
	return dims, spacing, origin
}

func volumeGeometry(v config.Volume) (geom.Dims, geom.Spacing, geom.Origin) {
	dims := geom.NewTuple(v.Dimensions[0], v.Dimensions[1], v.Dimensions[2])
	spacing := geom.Spacing{v.VoxelSize[0], v.VoxelSize[1], v.VoxelSize[2]}
	origin := geom.Origin{v.Origin[0], v.Origin[1], v.Origin[2]}
	return dims, spacing, origin
}

// angleStep returns the angular spacing in radians between consecutive
// projections. ProjectionAt180 spans N-1 steps over [0,pi] inclusive
// of both limits; otherwise N steps cover the half-open [0,pi).
func angleStep(p config.Projections) float64 {
	n := p.NumberOfProjections
	if p.ProjectionAt180 {
		if n <= 1 {
			return 0
		}
		return math.Pi / float64(n-1)
	}
	return math.Pi / float64(n)
}

func buildAngles(p config.Projections) []runner.Angle {
	step := angleStep(p)
	angles := make([]runner.Angle, p.NumberOfProjections)
	for i := range angles {
		angles[i] = runner.Angle{Index: i, Theta: float64(i) * step}
	}
	return angles
}

func buildTracer(p config.Projections) backproject.RayTracer {
	if p.ReverseRotation {
		return backproject.ReverseRotation{}
	}
	return backproject.Standard{}
}

func buildInterpolator(r config.Reconstruction) interp.PixelInterpolator {
	switch r.PixelInterpolation {
	case config.PixelInterpolationNearestNeighbor:
		return interp.Nearest{}
	case config.PixelInterpolationBilinear:
		return interp.Bilinear{}
	default:
		return interp.BilinearWithFallback{}
	}
}

func buildSmoothing(r config.Reconstruction) smooth.TransferFunction {
	switch r.SmoothingFilter {
	case config.SmoothingFilterGaussian:
		return smooth.NewGaussianFromRadius(r.SmoothingFilterRadius)
	case config.SmoothingFilterTaperedCosineWindow:
		return smooth.NewTaperedCosineWindow(r.SmoothingFilterFrequencies[0], r.SmoothingFilterFrequencies[1])
	default:
		return nil
	}
}

func buildFilterBackend(s config.Software) filter.Backend {
	switch s.FilteringModule {
	case config.FilteringModuleFFTW:
		return filter.BackendGonum
	case config.FilteringModuleVDSP:
		return filter.BackendDSP
	default:
		return filter.BackendDirect
	}
}

// buildFilterConfig folds the inter-projection angular step into
// Weight, as the ramp formula expects (see internal/filter).
func buildFilterConfig(cfg *config.Config, theta float64) filter.Config {
	return filter.Config{
		Width:     cfg.Projections.Dimensions[1],
		Spacing:   cfg.Projections.PixelSize[1],
		Weight:    theta,
		Smoothing: buildSmoothing(cfg.Reconstruction),
	}
}

func workerCount(s config.Software) int {
	if s.Threads > 0 {
		return s.Threads
	}
	return runtime.NumCPU()
}

// rawProjectionSensitivity is the log-ratio floor preventing +/-Inf at
// extinction; the original configuration surface has no per-run knob
// for it.
const rawProjectionSensitivity = 1e-6

func loadRawFrames[TRaw geom.Number](path string, dims geom.Dims, spacing geom.Spacing, origin geom.Origin) ([]*geom.Projection, error) {
	reader := streamio.NewRawReader[TRaw](path, dims, spacing, origin)
	if err := reader.Initialise(); err != nil {
		return nil, err
	}
	defer reader.Close()

	var frames []*geom.Projection
	buf := geom.NewRawProjection[TRaw](dims, spacing, origin)
	for {
		ok, err := reader.NextProjection(buf)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		proj := geom.NewProjection(dims, spacing, origin)
		for flat := 0; flat < buf.Len(); flat++ {
			proj.SetFlat(flat, float64(buf.FlatAt(flat)))
		}
		frames = append(frames, proj)
	}
	return frames, nil
}

func loadCalibrationField[TRaw geom.Number](path string, dims geom.Dims, spacing geom.Spacing, origin geom.Origin) (*geom.Projection, error) {
	frames, err := loadRawFrames[TRaw](path, dims, spacing, origin)
	if err != nil {
		return nil, err
	}
	return calib.Average(frames)
}

// buildCalibrationAndBadPixel loads the dark/bright (and optional
// post-scan bright) fields, identifies bad pixels, and — when
// Reconstruction.BadPixelCorrection=Averaging — masks the calibration
// fields themselves before the attenuation converter ever divides by
// them, so ValidateCalibration only ever sees already-corrected data.
func buildCalibrationAndBadPixel[TRaw geom.Number](cfg *config.Config, dims geom.Dims, spacing geom.Spacing, origin geom.Origin) (*calib.Calibration, *badpixel.Corrector, error) {
	if cfg.Input.DarkFieldFile == "" || cfg.Input.BrightFieldFile == "" {
		return nil, nil, reconerr.NewConfigurationError("Input",
			fmt.Errorf("DarkFieldFile and BrightFieldFile are required when Input.RawProjectionsFile is set"))
	}

	dark, err := loadCalibrationField[TRaw](cfg.Input.DarkFieldFile, dims, spacing, origin)
	if err != nil {
		return nil, nil, err
	}
	bright, err := loadCalibrationField[TRaw](cfg.Input.BrightFieldFile, dims, spacing, origin)
	if err != nil {
		return nil, nil, err
	}

	calibration, err := calib.New(dark, bright)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Input.PostScanBrightFieldFile != "" {
		post, err := loadCalibrationField[TRaw](cfg.Input.PostScanBrightFieldFile, dims, spacing, origin)
		if err != nil {
			return nil, nil, err
		}
		if err := calibration.SetPostScanBrightField(post); err != nil {
			return nil, nil, err
		}
	}

	r := cfg.Reconstruction
	corrector := badpixel.NewCorrector(dims)
	if r.BadPixelCorrection == config.BadPixelCorrectionAveraging {
		corrector.SetFlatFieldBadThreshold(r.FlatFieldBadThreshold)
		corrector.SetDarkFieldBadThreshold(r.DarkFieldBadThreshold)
	}
	corrector.IdentifyBadPixels(dark, bright)

	if r.BadPixelCorrection == config.BadPixelCorrectionAveraging {
		if err := corrector.ConstructCorrectionTable(); err != nil {
			return nil, nil, err
		}
		corrector.CorrectBadPixels(dark)
		corrector.CorrectBadPixels(bright)
	} else {
		corrector = nil
	}

	converter := atten.New(calibration, rawProjectionSensitivity)
	if err := converter.ValidateCalibration(); err != nil {
		return nil, nil, err
	}

	return calibration, corrector, nil
}

func buildBeamPowerCorrector(cfg *config.Config, corrector *badpixel.Corrector, calibration *calib.Calibration) (beampower.Corrector, error) {
	r := cfg.Reconstruction
	switch r.BeamPowerCorrection {
	case config.BeamPowerCorrectionManual:
		m := beampower.NewManual(r.BeamPowerDecayConstantTerm)
		m.SetLinearTerm(r.BeamPowerDecayLinearTerm)
		return m, nil
	case config.BeamPowerCorrectionConstantTotalAttenuation:
		return beampower.NewConstantAttenuation(r.BeamPowerDecayConstantTerm), nil
	case config.BeamPowerCorrectionNullProjectionEdge:
		return beampower.NewNullProjectionEdge(r.ProjectionBackgroundEdgeWidth), nil
	case config.BeamPowerCorrectionBeforeAndAfterBrightField:
		var goodPre, goodPost []float64
		if corrector != nil {
			goodPre = corrector.GoodPixelValues(calibration.BrightField())
			goodPost = corrector.GoodPixelValues(calibration.PostScanBrightField())
		} else {
			goodPre = calibration.BrightField().Data()
			goodPost = calibration.PostScanBrightField().Data()
		}
		return beampower.NewBeforeAndAfterBright(
			goodPre, goodPost,
			calibration.BrightFieldAdvanceInterval(), calibration.PostScanBrightFieldInterval(),
			cfg.Projections.NumberOfProjections,
		)
	default:
		return beampower.NewNone(), nil
	}
}

// stridedReader keeps every stride-th projection of the wrapped reader.
type stridedReader[T geom.Number] struct {
	streamio.Reader[T]
	stride int
}

func newStridedReader[T geom.Number](r streamio.Reader[T], stride int) streamio.Reader[T] {
	return &stridedReader[T]{Reader: r, stride: max(stride, 1)}
}

func (s *stridedReader[T]) NextProjection(out *geom.RawProjection[T]) (bool, error) {
	for i := 0; i < s.stride; i++ {
		if ok, err := s.Reader.NextProjection(out); !ok || err != nil {
			return ok, err
		}
	}
	return true, nil
}

func runRawByDataType(ctx context.Context, cfg *config.Config) error {
	dims, spacing, origin := projectionGeometry(cfg.Projections)

	switch cfg.Projections.DataType {
	case config.DataTypeInt8:
		return runRaw[int8](ctx, cfg, dims, spacing, origin)
	case config.DataTypeUInt8:
		return runRaw[uint8](ctx, cfg, dims, spacing, origin)
	case config.DataTypeInt16:
		return runRaw[int16](ctx, cfg, dims, spacing, origin)
	case config.DataTypeUInt16:
		return runRaw[uint16](ctx, cfg, dims, spacing, origin)
	case config.DataTypeInt32:
		return runRaw[int32](ctx, cfg, dims, spacing, origin)
	case config.DataTypeUInt32:
		return runRaw[uint32](ctx, cfg, dims, spacing, origin)
	case config.DataTypeFloat32:
		return runRaw[float32](ctx, cfg, dims, spacing, origin)
	default:
		return runRaw[float64](ctx, cfg, dims, spacing, origin)
	}
}

func runRaw[TRaw geom.Number](ctx context.Context, cfg *config.Config, dims geom.Dims, spacing geom.Spacing, origin geom.Origin) error {
	calibration, corrector, err := buildCalibrationAndBadPixel[TRaw](cfg, dims, spacing, origin)
	if err != nil {
		return err
	}
	converter := atten.New(calibration, rawProjectionSensitivity)

	beamPower, err := buildBeamPowerCorrector(cfg, corrector, calibration)
	if err != nil {
		return err
	}

	reader := newStridedReader[TRaw](
		streamio.NewRawReader[TRaw](cfg.Input.RawProjectionsFile, dims, spacing, origin),
		cfg.Projections.ProjectionStride,
	)

	return dispatchRun(ctx, cfg, reader, dims, spacing, origin, converter, corrector, beamPower, false)
}

func runAttenuationOrFiltered(ctx context.Context, cfg *config.Config) error {
	dims, spacing, origin := projectionGeometry(cfg.Projections)

	if cfg.Input.AttenuationProjectionsFile != "" {
		reader := newStridedReader[float64](
			streamio.NewRawReader[float64](cfg.Input.AttenuationProjectionsFile, dims, spacing, origin),
			cfg.Projections.ProjectionStride,
		)
		return dispatchRun(ctx, cfg, reader, dims, spacing, origin, nil, nil, nil, false)
	}

	reader := newStridedReader[float64](
		streamio.NewRawReader[float64](cfg.Input.FilteredProjectionsFile, dims, spacing, origin),
		cfg.Projections.ProjectionStride,
	)
	return dispatchRun(ctx, cfg, reader, dims, spacing, origin, nil, nil, nil, true)
}

// dispatchRun routes to the full concurrent volume-reconstruction
// pipeline when a VolumeFile output is requested, or to a simpler
// sequential stage-dump loop when only intermediate (Attenuation/
// Filtered/AttenuationCorrections) outputs are requested.
func dispatchRun[TRaw geom.Number](
	ctx context.Context, cfg *config.Config, reader streamio.Reader[TRaw],
	dims geom.Dims, spacing geom.Spacing, origin geom.Origin,
	converter *atten.Converter, badPixel *badpixel.Corrector, beamPower beampower.Corrector,
	skipFilter bool,
) error {
	if cfg.Output.VolumeFile == "" {
		return runStageDump(ctx, cfg, reader, dims, spacing, origin, converter, badPixel, beamPower, skipFilter)
	}
	return runVolumeReconstruction(ctx, cfg, reader, dims, spacing, origin, converter, badPixel, beamPower, skipFilter)
}

func runVolumeReconstruction[TRaw geom.Number](
	ctx context.Context, cfg *config.Config, reader streamio.Reader[TRaw],
	dims geom.Dims, spacing geom.Spacing, origin geom.Origin,
	converter *atten.Converter, badPixel *badpixel.Corrector, beamPower beampower.Corrector,
	skipFilter bool,
) error {
	if err := reader.Initialise(); err != nil {
		return err
	}
	defer reader.Close()

	angles := buildAngles(cfg.Projections)
	theta := angleStep(cfg.Projections)

	backend := buildFilterBackend(cfg.Software)
	filterCfg := buildFilterConfig(cfg, theta)
	if skipFilter {
		backend = filter.BackendDirect
		filterCfg = filter.Config{Width: cfg.Projections.Dimensions[1], Spacing: 1, Weight: 1}
	}

	volDims, volSpacing, volOrigin := volumeGeometry(cfg.Volume)
	slabs := subvolume.Partition(volDims, volSpacing, volOrigin, workerCount(cfg.Software))

	r, err := runner.New[TRaw](
		reader, converter, badPixel, beamPower,
		slabs, backend, filterCfg,
		buildTracer(cfg.Projections), buildInterpolator(cfg.Reconstruction),
		cfg.Reconstruction.ScalingFactor, angles,
	)
	if err != nil {
		return err
	}
	r.SkipFilter = skipFilter
	defer r.Close()

	if err := r.Run(ctx, dims, spacing, origin); err != nil {
		return err
	}

	return writeVolume(cfg.Output.VolumeFile, r.Volumes(), volDims, volSpacing, volOrigin)
}

func writeVolume(path string, volumes []*geom.Volume, dims geom.Dims, spacing geom.Spacing, origin geom.Origin) error {
	writer := streamio.NewRawWriter(path, dims, spacing, origin)
	if err := writer.Initialise(); err != nil {
		return err
	}

	ySize, xSize := dims[1], dims[2]
	sliceDims := geom.NewTuple(ySize, xSize)
	sliceSpacing := geom.Spacing{spacing[1], spacing[2]}
	sliceOrigin := geom.Origin{origin[1], origin[2]}

	for _, vol := range volumes {
		zDim := vol.Dims()[0]
		for z := 0; z < zDim; z++ {
			slice := geom.NewImage[float64](sliceDims, sliceSpacing, sliceOrigin)
			for y := 0; y < ySize; y++ {
				for x := 0; x < xSize; x++ {
					slice.Set(vol.At(z, y, x), y, x)
				}
			}
			if err := writer.WriteSlice(slice); err != nil {
				return err
			}
		}
	}
	return writer.Close()
}

// runStageDump processes every projection sequentially — no
// back-projection, no worker fan-out — writing whichever of
// Output.AttenuationProjectionsFile/FilteredProjectionsFile/
// AttenuationCorrectionsFile were requested. Used when no VolumeFile
// output is configured.
func runStageDump[TRaw geom.Number](
	ctx context.Context, cfg *config.Config, reader streamio.Reader[TRaw],
	dims geom.Dims, spacing geom.Spacing, origin geom.Origin,
	converter *atten.Converter, badPixel *badpixel.Corrector, beamPower beampower.Corrector,
	skipFilter bool,
) error {
	if err := reader.Initialise(); err != nil {
		return err
	}
	defer reader.Close()

	angles := buildAngles(cfg.Projections)
	theta := angleStep(cfg.Projections)

	stackDims := geom.NewTuple(len(angles), dims[0], dims[1])
	stackSpacing := geom.Spacing{1, spacing[0], spacing[1]}
	stackOrigin := geom.Origin{0, origin[0], origin[1]}

	var attenWriter, filteredWriter *streamio.RawWriter
	if cfg.Output.AttenuationProjectionsFile != "" {
		attenWriter = streamio.NewRawWriter(cfg.Output.AttenuationProjectionsFile, stackDims, stackSpacing, stackOrigin)
		if err := attenWriter.Initialise(); err != nil {
			return err
		}
	}
	if cfg.Output.FilteredProjectionsFile != "" {
		filteredWriter = streamio.NewRawWriter(cfg.Output.FilteredProjectionsFile, stackDims, stackSpacing, stackOrigin)
		if err := filteredWriter.Initialise(); err != nil {
			return err
		}
	}

	var filterer filter.ProjectionFilterer
	if !skipFilter {
		var err error
		filterer, err = filter.New(buildFilterBackend(cfg.Software), buildFilterConfig(cfg, theta))
		if err != nil {
			return err
		}
	}

	var corrections []float64
	raw := geom.NewRawProjection[TRaw](dims, spacing, origin)
	attenProj := geom.NewProjection(dims, spacing, origin)
	filtered := geom.NewProjection(dims, spacing, origin)

	for _, a := range angles {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		ok, err := reader.NextProjection(raw)
		if err != nil {
			return reconerr.NewIOError("", fmt.Errorf("reading projection %d: %w", a.Index, err))
		}
		if !ok {
			return reconerr.NewInputDataError("", fmt.Errorf("acquisition ended before projection %d", a.Index))
		}

		if converter != nil {
			if err := atten.ProcessProjection(converter, raw, attenProj); err != nil {
				return fmt.Errorf("converting projection %d: %w", a.Index, err)
			}
		} else {
			for flat := 0; flat < raw.Len(); flat++ {
				attenProj.SetFlat(flat, float64(raw.FlatAt(flat)))
			}
		}
		if badPixel != nil {
			badPixel.CorrectBadPixels(attenProj)
		}
		if beamPower != nil {
			delta, err := beamPower.Correct(attenProj, a.Index)
			if err != nil {
				return fmt.Errorf("beam-power correction for projection %d: %w", a.Index, err)
			}
			corrections = append(corrections, delta)
		}

		if attenWriter != nil {
			if err := attenWriter.WriteSlice(attenProj); err != nil {
				return err
			}
		}

		if !skipFilter {
			if err := filterer.FilterProjection(attenProj, filtered); err != nil {
				return err
			}
			if filteredWriter != nil {
				if err := filteredWriter.WriteSlice(filtered); err != nil {
					return err
				}
			}
		}

		slog.Debug("stage dump projection processed", "index", a.Index, "theta", a.Theta)
	}

	if attenWriter != nil {
		if err := attenWriter.Close(); err != nil {
			return err
		}
	}
	if filteredWriter != nil {
		if err := filteredWriter.Close(); err != nil {
			return err
		}
	}
	return writeCorrections(cfg.Output.AttenuationCorrectionsFile, corrections)
}

func writeCorrections(path string, deltas []float64) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(deltas, "", "  ")
	if err != nil {
		return reconerr.NewIOError(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return reconerr.NewIOError(path, err)
	}
	return nil
}
