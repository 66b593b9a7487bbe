package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	logging "github.com/ipfs/go-log/v2"
	"github.com/joho/godotenv"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"

	"nft-sweeper/model"
)

var (
	log = logging.Logger("config")

	ErrMissingParams = xerrors.New("missing required configuration parameters")
	ErrTotalNFTs     = xerrors.New("total NFTs must be greater than 0")
)

type SweeperConfig struct {
	Common struct {
		DBDSN    string `env:"DB_DSN" yaml:"db-dsn"`
		LogLevel string `env:"LOG_LEVEL" envDefault:"info" yaml:"log-level"`
		Commit   string `env:"COMMIT" yaml:"-"`
		Version  string `env:"VERSION" yaml:"-"`
	} `yaml:"common"`
	Collection struct {
		ChainID         string `env:"CHAIN_ID" yaml:"chain-id"`
		ContractAddress string `env:"NFT_CONTRACT_ADDRESS" yaml:"contract-address"`
		MoralisAPIKey   string `env:"MORALIS_API_KEY" yaml:"moralis-api-key"`
		BaseIPFSURI     string `env:"IPFS_BASE_URI" yaml:"ipfs-base-uri"`
		TotalNFTs       int    `env:"TOTAL_NFTS" envDefault:"171" yaml:"total-nfts"`
		DirPath         string `env:"DIR_PATH" envDefault:"assets" yaml:"dir-path"`
	} `yaml:"collection"`
	Sweep struct {
		Delay       time.Duration `env:"RATE_LIMIT_DELAY" envDefault:"500ms" yaml:"rate-limit-delay"`
		ReportPath  string        `env:"REPORT_PATH" envDefault:"results.json" yaml:"report-path"`
		MoralisURL  string        `env:"MORALIS_API_URL" envDefault:"https://deep-index.moralis.io/api/v2.2" yaml:"moralis-api-url"`
		FFmpegPath  string        `env:"FFMPEG_PATH" envDefault:"ffmpeg" yaml:"ffmpeg-path"`
		HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" yaml:"http-timeout"`
	} `yaml:"sweep"`
}

// InitConfig reads the environment (and a .env file if present), then
// overlays the optional YAML run config. Values in the file win.
func InitConfig(runConfig string) (SweeperConfig, error) {
	godotenv.Load() // load from environment OR .env file if it exists
	var cfg SweeperConfig

	if err := env.Parse(&cfg); err != nil {
		return cfg, xerrors.Errorf("error parsing config: %w", err)
	}

	if runConfig != "" {
		data, err := os.ReadFile(runConfig)
		if err != nil {
			return cfg, xerrors.Errorf("read run config %s: %w", runConfig, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, xerrors.Errorf("parse run config %s: %w", runConfig, err)
		}
		log.Debugf("run config %s applied", runConfig)
	}

	log.Debug("config parsed successfully")

	return cfg, nil
}

// Validate rejects configurations that cannot start a sweep.
func (c SweeperConfig) Validate() error {
	col := c.Collection
	if col.ChainID == "" || col.ContractAddress == "" || col.MoralisAPIKey == "" || col.BaseIPFSURI == "" {
		return ErrMissingParams
	}
	if col.TotalNFTs <= 0 {
		return ErrTotalNFTs
	}
	if col.DirPath == "" {
		return xerrors.Errorf("DIR_PATH is empty: %w", ErrMissingParams)
	}
	if c.Sweep.Delay < 0 {
		return xerrors.Errorf("rate limit delay must not be negative, got %s", c.Sweep.Delay)
	}
	return nil
}

// CollectionConfig returns the immutable collection settings for one sweep.
func (c SweeperConfig) CollectionConfig() model.Collection {
	return model.Collection{
		ChainID:         c.Collection.ChainID,
		ContractAddress: c.Collection.ContractAddress,
		APIKey:          c.Collection.MoralisAPIKey,
		BaseURI:         c.Collection.BaseIPFSURI,
		TotalNFTs:       c.Collection.TotalNFTs,
		OutputDir:       c.Collection.DirPath,
	}
}
