package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gardar/ocrspell/pkg/gdocai"
	"github.com/gardar/ocrspell/pkg/gvision"
	"github.com/gardar/ocrspell/pkg/logging"
	"github.com/gardar/ocrspell/pkg/tesseract"
)

const (
	providerVision     = "vision"
	providerDocumentAI = "documentai"
	providerTesseract  = "tesseract"
)

type visionConfig struct {
	Endpoint        string   `yaml:"endpoint"`
	CredentialsFile string   `yaml:"credentials_file"`
	LanguageHints   []string `yaml:"language_hints"`
	MaxRetries      *int     `yaml:"max_retries"`
}

type yamlConfig struct {
	Provider       string            `yaml:"provider"`
	Vision         visionConfig      `yaml:"vision"`
	DocumentAI     gdocai.Config     `yaml:"documentai"`
	Tesseract      tesseract.Config  `yaml:"tesseract"`
	CacheDir       string            `yaml:"cache_dir"`
	RawDir         string            `yaml:"raw_dir"`
	DictionaryPath string            `yaml:"dictionary_path"`
	WordfreqDir    string            `yaml:"wordfreq_dir"`
	Modifications  map[string]string `yaml:"modifications"`
	Log            logging.LogConfig `yaml:"log"`
}

// loadConfig reads a YAML file and fills in defaults. Relative paths are
// resolved against the directory of the config file, not the working
// directory.
func loadConfig(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	yc := yamlConfig{
		Provider: providerVision,
		Log:      logging.DefaultLogConfig(),
	}
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, err
	}

	switch yc.Provider {
	case providerVision, providerDocumentAI, providerTesseract:
	default:
		return nil, fmt.Errorf("unknown provider %q (want %s, %s or %s)",
			yc.Provider, providerVision, providerDocumentAI, providerTesseract)
	}

	// Each provider gets its own tiers unless cache_dir is set, so
	// switching providers never serves another engine's responses.
	// The dictionary is shared by all providers.
	base := filepath.Dir(path)
	cacheRoot := yc.CacheDir
	if cacheRoot == "" {
		cacheRoot = "cache"
	}
	if yc.DictionaryPath == "" {
		yc.DictionaryPath = filepath.Join(cacheRoot, "dictionary.txt")
	}
	yc.DictionaryPath = resolve(base, yc.DictionaryPath)
	if yc.CacheDir == "" {
		yc.CacheDir = cacheRoot
		if yc.Provider != providerVision {
			yc.CacheDir = filepath.Join(cacheRoot, yc.Provider)
		}
	}
	yc.CacheDir = resolve(base, yc.CacheDir)
	if yc.RawDir == "" {
		yc.RawDir = filepath.Join(yc.CacheDir, "raw")
	}
	yc.RawDir = resolve(base, yc.RawDir)
	if yc.WordfreqDir != "" {
		yc.WordfreqDir = resolve(base, yc.WordfreqDir)
	}
	if yc.Vision.CredentialsFile != "" {
		yc.Vision.CredentialsFile = resolve(base, yc.Vision.CredentialsFile)
	}

	return &yc, nil
}

// visionSettings converts the YAML section into the client config
func (yc *yamlConfig) visionSettings() gvision.Config {
	retry := gvision.DefaultRetry()
	if yc.Vision.MaxRetries != nil {
		retry.MaxRetries = *yc.Vision.MaxRetries
	}
	return gvision.Config{
		Endpoint:        yc.Vision.Endpoint,
		CredentialsFile: yc.Vision.CredentialsFile,
		LanguageHints:   yc.Vision.LanguageHints,
		Retry:           retry,
	}
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
