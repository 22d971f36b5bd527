package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "recon.conf")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

const minimalValidConfig = `
[Input]
RawProjectionsFile = raw.mha
DarkFieldFile = dark.mha
BrightFieldFile = bright.mha

[Output]
VolumeFile = volume.mha

[Projections]
DataType = UINT16
Dimensions = 512, 384
NumberOfProjections = 360
PixelSize = 0.2, 0.2

[Software]
Engine = MultiThreaded
`

func TestLoadMinimalValidConfig(t *testing.T) {
	path := writeConfig(t, minimalValidConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Input.RawProjectionsFile != "raw.mha" {
		t.Errorf("RawProjectionsFile = %q", cfg.Input.RawProjectionsFile)
	}
	if cfg.Projections.Dimensions != [2]int{512, 384} {
		t.Errorf("Dimensions = %v", cfg.Projections.Dimensions)
	}
	if cfg.Projections.CenterPixelU != float64(511)/2 {
		t.Errorf("CenterPixelU = %v, want %v", cfg.Projections.CenterPixelU, float64(511)/2)
	}
	if !cfg.Projections.ProjectionAt180 {
		t.Error("ProjectionAt180 should default to true")
	}
	if cfg.Reconstruction.BadPixelCorrection != BadPixelCorrectionAveraging {
		t.Errorf("BadPixelCorrection = %v, want Averaging", cfg.Reconstruction.BadPixelCorrection)
	}
	if cfg.Reconstruction.FlatFieldBadThreshold != 10 {
		t.Errorf("FlatFieldBadThreshold = %v, want 10", cfg.Reconstruction.FlatFieldBadThreshold)
	}
	if cfg.Reconstruction.PixelInterpolation != PixelInterpolationBilinearWithFallback {
		t.Errorf("PixelInterpolation = %v, want BilinearWithFallback", cfg.Reconstruction.PixelInterpolation)
	}
	if cfg.Reconstruction.SmoothingFilter != SmoothingFilterGaussian {
		t.Errorf("SmoothingFilter = %v, want Gaussian", cfg.Reconstruction.SmoothingFilter)
	}
	if cfg.Reconstruction.SmoothingFilterRadius != 0.5 {
		t.Errorf("SmoothingFilterRadius = %v, want 0.5", cfg.Reconstruction.SmoothingFilterRadius)
	}
	if cfg.Software.MaximumVolumeMemory <= 0 {
		t.Error("MaximumVolumeMemory should have been resolved from Automatic")
	}
	if cfg.Software.Threads != 0 {
		t.Errorf("Threads = %d, want 0 (Automatic)", cfg.Software.Threads)
	}

	// Volume defaults: square pixel size => cubic voxels; dims derived
	// from projection geometry.
	if cfg.Volume.VoxelSize != [3]float64{0.2, 0.2, 0.2} {
		t.Errorf("VoxelSize = %v, want {0.2,0.2,0.2}", cfg.Volume.VoxelSize)
	}
}

func TestLoadRejectsMultipleInputFiles(t *testing.T) {
	path := writeConfig(t, `
[Input]
RawProjectionsFile = raw.mha
AttenuationProjectionsFile = atten.mha

[Output]
VolumeFile = volume.mha

[Projections]
DataType = UINT16
Dimensions = 8, 8
NumberOfProjections = 10
PixelSize = 1, 1
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for two Input files specified")
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, minimalValidConfig+"\n[Projections]\nBogusKey = 1\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown key")
	}
}

func TestLoadRejectsUnknownSection(t *testing.T) {
	path := writeConfig(t, minimalValidConfig+"\n[NotASection]\nKey = 1\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown section")
	}
}

func TestLoadRejectsInvalidEnum(t *testing.T) {
	path := writeConfig(t, `
[Input]
RawProjectionsFile = raw.mha

[Output]
AttenuationProjectionsFile = atten.mha

[Projections]
DataType = NOT_A_TYPE
Dimensions = 8, 8
NumberOfProjections = 10
PixelSize = 1, 1
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an invalid DataType enum value")
	}
}

func TestLoadManualBeamPowerRequiresLinearTerm(t *testing.T) {
	path := writeConfig(t, `
[Input]
RawProjectionsFile = raw.mha

[Output]
AttenuationProjectionsFile = atten.mha

[Projections]
DataType = UINT16
Dimensions = 8, 8
NumberOfProjections = 10
PixelSize = 1, 1

[Reconstruction]
BeamPowerCorrection = Manual
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error: Manual requires BeamPowerDecayLinearTerm")
	}
}

func TestLoadTaperedCosineRequiresFrequencies(t *testing.T) {
	path := writeConfig(t, `
[Input]
RawProjectionsFile = raw.mha

[Output]
AttenuationProjectionsFile = atten.mha

[Projections]
DataType = UINT16
Dimensions = 8, 8
NumberOfProjections = 10
PixelSize = 1, 1

[Reconstruction]
SmoothingFilter = TaperedCosineWindow
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error: TaperedCosineWindow requires SmoothingFilterFrequencies")
	}
}

func TestLoadZeroProjectionEdgeAliasRewritten(t *testing.T) {
	path := writeConfig(t, `
[Input]
RawProjectionsFile = raw.mha

[Output]
AttenuationProjectionsFile = atten.mha

[Projections]
DataType = UINT16
Dimensions = 8, 8
NumberOfProjections = 10
PixelSize = 1, 1

[Reconstruction]
BeamPowerCorrection = ZeroProjectionEdgeAttenuation
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Reconstruction.BeamPowerCorrection != BeamPowerCorrectionNullProjectionEdge {
		t.Errorf("BeamPowerCorrection = %v, want NullProjectionEdge", cfg.Reconstruction.BeamPowerCorrection)
	}
}

func TestLoadExplicitMemoryUnits(t *testing.T) {
	path := writeConfig(t, minimalValidConfig+"\n[Software]\nMaximumVolumeMemory = 2GB\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := int64(2) * 1024 * 1024 * 1024
	if cfg.Software.MaximumVolumeMemory != want {
		t.Errorf("MaximumVolumeMemory = %d, want %d", cfg.Software.MaximumVolumeMemory, want)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "does-not-exist.conf")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestParseINIAcceptsColonAndEqualSeparators(t *testing.T) {
	path := writeConfig(t, `
[Input]
RawProjectionsFile: raw.mha

[Output]
AttenuationProjectionsFile = atten.mha

[Projections]
DataType = UINT16
Dimensions: 8, 8
NumberOfProjections = 10
PixelSize: 1, 1
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Input.RawProjectionsFile != "raw.mha" {
		t.Errorf("RawProjectionsFile = %q", cfg.Input.RawProjectionsFile)
	}
}
