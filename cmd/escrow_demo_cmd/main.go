package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/hashlock-io/escrow-go/cmd"
	"github.com/hashlock-io/escrow-go/logconfig"
)

const (
	ENV_CONFIG_FILE_PATH = "ESCROW_CONFIG"
)

func main() {
	logconfig.ConfigInfoLogger()

	// Tool to read environment variables
	viper.AutomaticEnv()

	// Accessing an environment variable of configuration file location.
	_config_file := viper.GetString(ENV_CONFIG_FILE_PATH)
	if _config_file != "" {
		if !cmd.FileExists(_config_file) {
			fmt.Printf("Escrow demo configuration file not found: %s\n", _config_file)
			return
		}
		viper.SetConfigFile(_config_file)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Printf("Error reading configuration file, %s\n", err)
			return
		}
	}

	dc := prepareDemoConfig()

	fmt.Println("Running escrow demo against the simulated ledger...")
	if err := cmd.RunDemo(dc); err != nil {
		fmt.Printf("Demo failed: %v\n", err)
	}
}

func prepareDemoConfig() *cmd.DemoConfig {
	// The defaults match the reference deployment; any field can be
	// overridden from the config file or environment.
	viper.SetDefault("escrow_program_id", "72bGikYM7J314fvAfBDvMGdqaewHaq7LpbJMNF5rJDb8")
	viper.SetDefault("prover_program_id", "BoNsHRcyLLNdcqVPDMvqdEZAdfyvLqmPU2XBSNmWBsnF")
	viper.SetDefault("image_id", "75029efa53432a9030e5e76d58fb34dfa786cd0f6182ed0741d635ff5e4f0341")
	viper.SetDefault("seed", "s1")
	viper.SetDefault("secret", "hello")
	viper.SetDefault("amount", uint64(100_000_000))
	viper.SetDefault("tip", uint64(12_000))
	viper.SetDefault("expiry", uint64(10))
	viper.SetDefault("db_file", ":memory:")

	return &cmd.DemoConfig{
		EscrowProgramID: viper.GetString("escrow_program_id"),
		ProverProgramID: viper.GetString("prover_program_id"),
		ImageID:         viper.GetString("image_id"),
		Seed:            viper.GetString("seed"),
		Secret:          viper.GetString("secret"),
		Amount:          viper.GetUint64("amount"),
		Tip:             viper.GetUint64("tip"),
		Expiry:          viper.GetUint64("expiry"),
		DbFile:          viper.GetString("db_file"),
	}
}
