package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/n0fate/chainbreaker-go/internal/keychain"
	"github.com/n0fate/chainbreaker-go/pkg/app"
)

var dumpFlags struct {
	password       string
	passwordPrompt bool
	key            string
	keyPrompt      bool
	unlockFile     string

	dumpAll              bool
	dumpPasswordHash     bool
	dumpGenericPasswords bool
	dumpInternet         bool
	dumpAppleShare       bool
	dumpPublicKeys       bool
	dumpPrivateKeys      bool
	dumpX509             bool

	outputDir string
}

var dumpCmd = &cobra.Command{
	Use:   "dump <keychain-file>",
	Short: "Parse a keychain file and dump its records",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	f := dumpCmd.Flags()
	f.StringVar(&dumpFlags.password, "password", "", "unlock password, provided via argument")
	f.BoolVar(&dumpFlags.passwordPrompt, "password-prompt", false, "prompt for the unlock password")
	f.StringVar(&dumpFlags.key, "key", "", "unlock wrapping-key in hex, provided via argument")
	f.BoolVar(&dumpFlags.keyPrompt, "key-prompt", false, "prompt for the unlock key in hex")
	f.StringVar(&dumpFlags.unlockFile, "unlock-file", "", "path to an unlock-file containing the master key")
	dumpCmd.MarkFlagsMutuallyExclusive("password", "password-prompt", "key", "key-prompt", "unlock-file")

	f.BoolVar(&dumpFlags.dumpAll, "dump-all", false, "dump every record kind and the password hash")
	f.BoolVar(&dumpFlags.dumpPasswordHash, "dump-keychain-password-hash", false, "dump the crackable password-hash line")
	f.BoolVar(&dumpFlags.dumpGenericPasswords, "dump-generic-passwords", false, "dump generic password records")
	f.BoolVar(&dumpFlags.dumpInternet, "dump-internet-passwords", false, "dump Internet password records")
	f.BoolVar(&dumpFlags.dumpAppleShare, "dump-appleshare-passwords", false, "dump AppleShare password records")
	f.BoolVar(&dumpFlags.dumpPublicKeys, "dump-public-keys", false, "dump public key records")
	f.BoolVar(&dumpFlags.dumpPrivateKeys, "dump-private-keys", false, "dump private key records")
	f.BoolVar(&dumpFlags.dumpX509, "dump-x509-certificates", false, "dump X.509 certificate records")

	f.StringVar(&dumpFlags.outputDir, "output", "", "write a sibling output.txt alongside stdout in this directory")
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return app.NewError(app.ErrCodeIO, "loading configuration", err)
	}

	ctx := app.NewContext()
	ctx.Verbose = globalVerbose
	ctx.Quiet = globalQuiet
	if !cmd.Flags().Changed("debug") && !cmd.Flags().Changed("quiet") {
		switch cfg.LogLevel {
		case "debug":
			ctx.Verbose = true
		case "error", "quiet":
			ctx.Quiet = true
		}
	}

	if !cmd.Flags().Changed("output") && cfg.OutputDir != "" {
		dumpFlags.outputDir = cfg.OutputDir
	}

	out, closeOut, err := openOutput(dumpFlags.outputDir)
	if err != nil {
		return err
	}
	defer closeOut()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return app.NewError(app.ErrCodeIO, "reading keychain file", err)
	}

	kc, err := keychain.Load(data, ctx)
	if err != nil {
		return app.NewError(app.ErrCodeMalformedContainer, "loading keychain", err)
	}

	if dumpFlags.keyPrompt {
		key, err := app.PromptPassword("Unlock Key: ")
		if err != nil {
			return err
		}
		dumpFlags.key = key
	}
	if dumpFlags.passwordPrompt {
		pw, err := app.PromptPassword("Unlock Password: ")
		if err != nil {
			return err
		}
		dumpFlags.password = pw
	}

	secret := app.UnlockSecret{
		Password:   dumpFlags.password,
		HexKey:     dumpFlags.key,
		UnlockFile: dumpFlags.unlockFile,
	}
	if !secret.IsEmpty() {
		if err := secret.Apply(kc); err != nil {
			ctx.Error(fmt.Sprintf("unlock failed: %v", err))
		}
	}

	if !anyDumpRequested() {
		return app.NewError(app.ErrCodeNoAction, "no action specified: pass at least one --dump-* flag", nil)
	}

	if dumpFlags.dumpAll || dumpFlags.dumpPasswordHash {
		hash, err := kc.PasswordHash()
		if err != nil {
			ctx.Error(fmt.Sprintf("password hash unavailable: %v", err))
		} else {
			app.RenderPasswordHash(out, hash)
		}
	}
	if dumpFlags.dumpAll || dumpFlags.dumpGenericPasswords {
		app.RenderGenericPasswords(out, kc.GenericPasswords())
	}
	if dumpFlags.dumpAll || dumpFlags.dumpInternet {
		app.RenderInternetPasswords(out, kc.InternetPasswords())
	}
	if dumpFlags.dumpAll || dumpFlags.dumpAppleShare {
		app.RenderAppleSharePasswords(out, kc.AppleSharePasswords())
	}
	if dumpFlags.dumpAll || dumpFlags.dumpX509 {
		app.RenderX509Certificates(out, kc.X509Certificates())
	}
	if dumpFlags.dumpAll || dumpFlags.dumpPublicKeys {
		app.RenderPublicKeys(out, kc.PublicKeys())
	}
	if dumpFlags.dumpAll || dumpFlags.dumpPrivateKeys {
		app.RenderPrivateKeys(out, kc.PrivateKeys())
	}

	return nil
}

func anyDumpRequested() bool {
	return dumpFlags.dumpAll || dumpFlags.dumpPasswordHash || dumpFlags.dumpGenericPasswords ||
		dumpFlags.dumpInternet || dumpFlags.dumpAppleShare || dumpFlags.dumpPublicKeys ||
		dumpFlags.dumpPrivateKeys || dumpFlags.dumpX509
}

// openOutput returns the writer stdout should fan out to. With --output,
// it creates the directory if needed and mirrors every write to a
// sibling output.txt.
func openOutput(dir string) (io.Writer, func(), error) {
	if dir == "" {
		return os.Stdout, func() {}, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, app.NewError(app.ErrCodeIO, "creating output directory", err)
	}

	f, err := os.Create(filepath.Join(dir, "output.txt"))
	if err != nil {
		return nil, nil, app.NewError(app.ErrCodeIO, "creating output.txt", err)
	}

	return io.MultiWriter(os.Stdout, f), func() { f.Close() }, nil
}
