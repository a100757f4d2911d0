// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/config"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/helper/posix"
	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/chain"
	x509verify "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/verify"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
)

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputTree  = "tree"
	OutputJSON  = "json"
	OutputPEM   = "pem"
	OutputDER   = "der"
)

var (
	// ErrInputRequired is returned when neither a file nor --host is given.
	ErrInputRequired = errors.New("cli: a certificate file or --host is required")

	// ErrConflictingInput is returned when both a file and --host are given.
	ErrConflictingInput = errors.New("cli: use either a certificate file or --host, not both")

	// ErrUnknownOutput is returned for an unsupported --output value.
	ErrUnknownOutput = errors.New("cli: unknown output format")

	// ErrVerificationFailed is returned when the verdict is not OK.
	ErrVerificationFailed = errors.New("cli: verification failed")
)

type options struct {
	host          string
	port          int
	intermediates []string
	roots         []string
	configPath    string
	at            string
	strict        bool
	noOCSP        bool
	output        string
	verbose       bool
}

// Execute builds the root command and runs it with os.Args.
//
// Parameters:
//   - ctx: Context cancelled on SIGINT/SIGTERM
//   - version: Application version
//   - log: Logger for progress lines
//
// Returns:
//   - error: Usage, input or verification failure
func Execute(ctx context.Context, version string, log logger.Logger) error {
	return NewCommand(version, log).ExecuteContext(ctx)
}

// NewCommand returns the root command. Output goes to the command's
// configured writer so callers can capture it.
func NewCommand(version string, log logger.Logger) *cobra.Command {
	if log == nil {
		log = logger.Discard
	}
	opts := &options{}
	exe := posix.ExecutableName("x509-chain-verifier")

	cmd := &cobra.Command{
		Use:   exe + " [CERT_FILE]",
		Short: "Verify an X.509 certificate chain and its OCSP revocation status",
		Long: `Builds a chain from the leaf certificate to one of the trusted roots,
verifies validity, signatures and constraints, then asks the OCSP responder
of every non-root certificate for its status.

CERT_FILE may hold the leaf alone or the leaf followed by intermediates,
in PEM, DER or PKCS7 form.`,
		Example: fmt.Sprintf(`  %[1]s chain.pem
  %[1]s leaf.pem -i intermediate.pem -r root.pem --at 2024-06-01T00:00:00Z
  %[1]s --host example.com -r roots.pem -o tree
  %[1]s leaf.pem -i intermediate.pem -o pem > chain.pem`, exe),
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), version, log, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.host, "host", "", "fetch the chain from a TLS endpoint instead of a file")
	flags.IntVar(&opts.port, "port", 443, "port used with --host")
	flags.StringSliceVarP(&opts.intermediates, "intermediates", "i", nil, "files holding intermediate certificates")
	flags.StringSliceVarP(&opts.roots, "roots", "r", nil, "files holding trusted roots, added to the configured ones")
	flags.StringVarP(&opts.configPath, "config", "c", "", "configuration file (JSON or YAML), defaults to $"+config.EnvConfigFile)
	flags.StringVar(&opts.at, "at", "", "verification time in RFC 3339 (default: now)")
	flags.BoolVar(&opts.strict, "strict", false, "require CA basic constraints, key usage and path length on issuers")
	flags.BoolVar(&opts.noOCSP, "no-ocsp", false, "skip online revocation checks")
	flags.StringVarP(&opts.output, "output", "o", OutputTable, "output format: table, tree, json, or pem/der to export the verified chain")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log each verification stage")

	cmd.AddCommand(newServeCommand(version))

	return cmd
}

func run(ctx context.Context, out io.Writer, version string, log logger.Logger, opts *options, args []string) error {
	switch opts.output {
	case OutputTable, OutputTree, OutputJSON, OutputPEM, OutputDER:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutput, opts.output)
	}

	at, err := parseTime(opts.at)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	cfg.Roots = append(cfg.Roots, opts.roots...)
	cfg.Chain.Strict = cfg.Chain.Strict || opts.strict
	cfg.OCSP.Disabled = cfg.OCSP.Disabled || opts.noOCSP

	var engineLog logger.Logger
	if opts.verbose {
		engineLog = log
	}
	vcfg, err := cfg.ToVerifyConfig(version, engineLog)
	if err != nil {
		return err
	}

	certs, err := readInput(ctx, cfg, opts, args)
	if err != nil {
		return err
	}
	req := x509verify.Request{Leaf: certs[0], Intermediates: certs[1:], At: at}
	for _, path := range opts.intermediates {
		ders, err := config.ReadCertificates(path)
		if err != nil {
			return fmt.Errorf("failed to read intermediates: %w", err)
		}
		req.Intermediates = append(req.Intermediates, ders...)
	}

	verdict := x509verify.VerifyChainAndRevocation(ctx, vcfg, req)
	if err := render(out, opts.output, verdict); err != nil {
		return err
	}

	if !verdict.Verified() {
		return fmt.Errorf("%w: %v", ErrVerificationFailed, verdict.Err)
	}
	log.Printf("Certificate chain verified (%d certificates).", verdict.Chain.Len())
	return nil
}

func readInput(ctx context.Context, cfg *config.Config, opts *options, args []string) ([][]byte, error) {
	switch {
	case len(args) == 1 && opts.host != "":
		return nil, ErrConflictingInput
	case len(args) == 1:
		ders, err := config.ReadCertificates(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read certificate: %w", err)
		}
		return ders, nil
	case opts.host != "":
		timeout := time.Duration(cfg.OCSP.TimeoutSeconds) * time.Second
		ders, err := x509chain.FetchRemoteChain(ctx, opts.host, opts.port, timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch chain from %s:%d: %w", opts.host, opts.port, err)
		}
		return ders, nil
	default:
		return nil, ErrInputRequired
	}
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	at, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at value: %w", err)
	}
	return at, nil
}

func render(out io.Writer, format string, v x509verify.Verdict) error {
	switch format {
	case OutputJSON:
		data, err := json.MarshalIndent(v.Report(), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err

	case OutputPEM, OutputDER:
		// only a verified chain is exported; failures surface as the command error
		if !v.Verified() {
			return nil
		}
		decoder := x509certs.New()
		data := decoder.EncodePEM(v.Chain.DER())
		if format == OutputDER {
			data = decoder.EncodeDER(v.Chain.DER())
		}
		_, err := out.Write(data)
		return err
	}

	_, err := io.WriteString(out, v.Text(format == OutputTree))
	return err
}
