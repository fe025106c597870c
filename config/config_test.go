package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data/gun_data.csv", cfg.Input.NicsURL)
	assert.Equal(t, ',', cfg.Separator())
	assert.Equal(t, 2010, cfg.Years.A)
	assert.Equal(t, 2016, cfg.Years.B)
	assert.Equal(t, 0.5, cfg.Census.MaxMissing)
	assert.Empty(t, cfg.Nics.Excluded)
	assert.True(t, cfg.Output.CSV)
	assert.False(t, cfg.Output.XLSX)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("NICSDF_INPUT_NICS_URL", "s3://bucket/gun_data.csv")
	t.Setenv("NICSDF_YEARS_B", "2015")
	t.Setenv("NICSDF_NICS_EXCLUDED", "Guam,Puerto Rico")
	t.Setenv("NICSDF_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/gun_data.csv", cfg.Input.NicsURL)
	assert.Equal(t, 2015, cfg.Years.B)
	assert.Equal(t, []string{"Guam", "Puerto Rico"}, cfg.Nics.Excluded)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_File(t *testing.T) {
	t.Setenv("NICSDF_YEARS_A", "2011")

	fileName := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
input:
  census_url: census.xlsx
years:
  b: 2017
output:
  dir: out
  xlsx: true
logging:
  format: text
`
	require.NoError(t, os.WriteFile(fileName, []byte(yml), 0o644))

	cfg, err := Load(fileName)
	require.NoError(t, err)
	assert.Equal(t, "census.xlsx", cfg.Input.CensusURL)
	assert.Equal(t, "data/gun_data.csv", cfg.Input.NicsURL)
	assert.Equal(t, 2011, cfg.Years.A)
	assert.Equal(t, 2017, cfg.Years.B)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.True(t, cfg.Output.XLSX)
	assert.True(t, cfg.Output.CSV)
	assert.Equal(t, "text", cfg.Logging.Format)

	_, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("NICSDF_YEARS_B", "2010")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nefield")

	cfg, err := Load("")
	assert.Nil(t, cfg)
	assert.Error(t, err)

	t.Setenv("NICSDF_YEARS_B", "2016")
	cfg, err = Load("")
	require.NoError(t, err)

	cfg.Input.Separator = ";;"
	assert.Error(t, cfg.Validate())

	cfg.Input.Separator = ";"
	cfg.Logging.Level = "loud"
	assert.Error(t, cfg.Validate())

	cfg.Logging.Level = "info"
	cfg.Census.MaxMissing = 1.5
	assert.Error(t, cfg.Validate())

	cfg.Census.MaxMissing = 0.5
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = ""
	assert.Error(t, cfg.Validate())
}
