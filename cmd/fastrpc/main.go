package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/danderson/fastrpc"
	"github.com/danderson/fastrpc/internal/yamlvalue"
	"github.com/kr/pretty"
	"gopkg.in/yaml.v3"
)

var encodeArgs struct {
	Format     string `flag:"format,default=raw,Output format: raw, base64 or hex"`
	Hints      string `flag:"hints,Comma-separated list of path=hint encoding hints"`
	GlobalHint string `flag:"global-hint,Encoding hint to apply to every value"`
}

var decodeArgs struct {
	Base64 bool   `flag:"base64,Input is base64 encoded"`
	Format string `flag:"format,default=pretty,Output format: pretty or yaml"`
}

func main() {
	root := &command.C{
		Name:  "fastrpc",
		Usage: "command args...",
		Commands: []*command.C{
			{
				Name:  "encode",
				Usage: "encode method [params.yaml]",
				Help: `Encode a FastRPC call.

The optional parameters file is a YAML sequence of call parameters,
or "-" to read it from stdin. YAML floats encode as doubles, and
!!binary values as binaries. Other ambiguous values can be typed with
--hints, for example:

  --hints=0=float,1.data=binary
`,
				SetFlags: command.Flags(flax.MustBind, &encodeArgs),
				Run:      command.Adapt(runEncode),
			},
			{
				Name:     "decode",
				Usage:    "decode [file]",
				Help:     "Decode a FastRPC message read from file, or stdin.",
				SetFlags: command.Flags(flax.MustBind, &decodeArgs),
				Run:      command.Adapt(runDecode),
			},
			command.HelpCommand(nil),
			command.VersionCommand(),
		},
	}

	env := root.NewEnv(nil)
	command.RunOrFail(env, os.Args[1:])
}

func runEncode(env *command.Env, method string, rest ...string) error {
	if len(rest) > 1 {
		return env.Usagef("too many arguments")
	}

	var (
		params    []any
		yamlHints fastrpc.PathHints
	)
	if len(rest) == 1 {
		bs, err := readInput(rest[0])
		if err != nil {
			return err
		}
		params, yamlHints, err = yamlvalue.Params(bs)
		if err != nil {
			return fmt.Errorf("parsing parameters: %w", err)
		}
	}

	hints, err := buildHints(encodeArgs.Hints, encodeArgs.GlobalHint, yamlHints)
	if err != nil {
		return err
	}

	switch encodeArgs.Format {
	case "raw", "hex":
		bs, err := fastrpc.Encode(method, params, hints)
		if err != nil {
			return fmt.Errorf("encoding call: %w", err)
		}
		if encodeArgs.Format == "hex" {
			fmt.Print(hex.Dump(bs))
			return nil
		}
		_, err = os.Stdout.Write(bs)
		return err
	case "base64":
		s, err := fastrpc.EncodeBase64(method, params, hints)
		if err != nil {
			return fmt.Errorf("encoding call: %w", err)
		}
		fmt.Println(s)
		return nil
	default:
		return env.Usagef("unknown output format %q", encodeArgs.Format)
	}
}

func runDecode(env *command.Env, rest ...string) error {
	if len(rest) > 1 {
		return env.Usagef("too many arguments")
	}
	in := "-"
	if len(rest) == 1 {
		in = rest[0]
	}
	bs, err := readInput(in)
	if err != nil {
		return err
	}

	var msg fastrpc.Message
	if decodeArgs.Base64 {
		msg, err = fastrpc.DecodeBase64(string(bytes.TrimSpace(bs)))
	} else {
		msg, err = fastrpc.Decode(bs)
	}
	if err != nil {
		return fmt.Errorf("decoding message: %w", err)
	}

	switch decodeArgs.Format {
	case "pretty":
		fmt.Printf("%# v\n", pretty.Formatter(msg))
	case "yaml":
		n, err := yamlvalue.MessageNode(msg)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(n); err != nil {
			return err
		}
		return enc.Close()
	default:
		return env.Usagef("unknown output format %q", decodeArgs.Format)
	}
	return nil
}

// readInput returns the contents of the named file, or of stdin if
// name is "-".
func readInput(name string) ([]byte, error) {
	if name == "-" {
		bs, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return bs, nil
	}
	bs, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return bs, nil
}
