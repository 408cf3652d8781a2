// This program performs administrative tasks for the crowdsale service.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/crowdsale/app/tooling/admin/commands"
	"github.com/ardanlabs/crowdsale/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

type config struct {
	conf.Version
	Args        conf.Args
	GenesisPath string `conf:"default:zblock/genesis.json"`
	Storage     string `conf:"default:disk"`
	DBPath      string `conf:"default:zblock/records/"`
	KeyFolder   string `conf:"default:zblock/accounts/"`
	KeyStore    string `conf:"default:zblock/keystore/"`
}

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		if !errors.Is(err, commands.ErrHelp) {
			log.Errorw("startup", "ERROR", err)
		}
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := config{
		Version: conf.Version{
			Build: build,
			Desc:  "crowdsale administration",
		},
	}

	const prefix = "SALE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	return processCommands(cfg.Args, log, cfg)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, log *zap.SugaredLogger, cfg config) error {
	store := commands.Store{
		Kind:        cfg.Storage,
		DBPath:      cfg.DBPath,
		GenesisPath: cfg.GenesisPath,
	}

	switch args.Num(0) {
	case "records":
		if err := commands.Records(args, store); err != nil {
			return fmt.Errorf("listing records: %w", err)
		}

	case "ledger":
		if err := commands.Ledger(log, store); err != nil {
			return fmt.Errorf("replaying ledger: %w", err)
		}

	case "keystore":
		if err := commands.KeyStore(args, cfg.KeyFolder, cfg.KeyStore); err != nil {
			return fmt.Errorf("importing key: %w", err)
		}

	default:
		fmt.Println("records [from] [to]: list the stored calls")
		fmt.Println("ledger:              replay the stored calls and print the sale")
		fmt.Println("keystore name pass:  import a key file into an encrypted keystore")
		fmt.Println("provide a command to get more help.")
		return commands.ErrHelp
	}

	return nil
}
