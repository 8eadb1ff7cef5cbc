// Package txbuild interactively collects a signing request for script-based
// chains, resolving script-type defaults and consensus-binding data as it
// goes.
package txbuild

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github/chapool/go-hwctl/internal/clierrors"
	"github/chapool/go-hwctl/internal/util"
	"github/chapool/go-hwctl/internal/wallet/chains"
	"github/chapool/go-hwctl/internal/wallet/path"
)

// Builder collects inputs and outputs until the user signals completion.
type Builder struct {
	chain  chains.Chain
	source chains.DataSource
	in     *bufio.Reader
	out    io.Writer
}

// NewBuilder creates a builder reading prompts from in and writing them to
// out. source may be nil for chains without consensus binding.
func NewBuilder(chain chains.Chain, source chains.DataSource, in io.Reader, out io.Writer) *Builder {
	return &Builder{
		chain:  chain,
		source: source,
		in:     bufio.NewReader(in),
		out:    out,
	}
}

// Build runs the collection loop and assembles the signing request. An empty
// request (no inputs, no outputs) is a valid terminal state.
func (b *Builder) Build(ctx context.Context, version uint32, lockTime uint32) (*SignRequest, error) {
	// The binding anchor is resolved once up front and shared by every
	// output that needs it; inputs bind to the block recording their
	// previous output instead.
	var anchor *chains.Binding
	if b.chain.Bip115 {
		if b.source == nil {
			return nil, errors.Errorf("chain %s requires a data source for consensus binding", b.chain.Name)
		}

		resolved, err := chains.ResolveBinding(ctx, b.source)
		if err != nil {
			return nil, err
		}
		anchor = resolved
	}

	inputs, err := b.collectInputs(ctx)
	if err != nil {
		return nil, err
	}

	outputs, err := b.collectOutputs(anchor)
	if err != nil {
		return nil, err
	}

	util.LogFromContext(ctx).Debug().
		Str("chain", b.chain.Name).
		Int("inputs", len(inputs)).
		Int("outputs", len(outputs)).
		Msg("Assembled signing request")

	return &SignRequest{
		Coin:     b.chain.Name,
		Inputs:   inputs,
		Outputs:  outputs,
		Version:  version,
		LockTime: lockTime,
	}, nil
}

func (b *Builder) collectInputs(ctx context.Context) ([]TxInput, error) {
	var inputs []TxInput

	for {
		ref, err := b.ask("Previous output to spend (txid:index, empty to finish): ")
		if err != nil {
			return nil, err
		}
		if ref == "" {
			return inputs, nil
		}

		txid, prevIndex, err := parsePrevOutputRef(ref)
		if err != nil {
			return nil, err
		}

		pathExpr, err := b.ask("BIP-32 path to derive the key: ")
		if err != nil {
			return nil, err
		}

		inputPath, err := path.Parse(pathExpr)
		if err != nil {
			return nil, err
		}

		amount, err := b.askUint("Amount in base units: ", 64, nil)
		if err != nil {
			return nil, err
		}

		defaultSequence := uint64(DefaultSequence)
		sequence, err := b.askUint(fmt.Sprintf("Sequence number [%d]: ", DefaultSequence), 32, &defaultSequence)
		if err != nil {
			return nil, err
		}

		scriptType, err := b.askScriptType(path.DefaultScriptType(inputPath))
		if err != nil {
			return nil, err
		}

		prevHash, err := hex.DecodeString(txid)
		if err != nil {
			return nil, clierrors.New(clierrors.CategoryMalformedInput, "previous output id %q is not hex", txid)
		}

		input := TxInput{
			Path:       inputPath,
			PrevHash:   prevHash,
			PrevIndex:  prevIndex,
			Amount:     amount,
			Sequence:   uint32(sequence),
			ScriptType: scriptType,
		}

		if b.chain.Bip115 {
			prev, err := b.source.PrevOutput(ctx, txid, prevIndex)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to resolve previous output %s:%d", txid, prevIndex)
			}

			binding := chains.BindingForPrevOutput(prev)
			input.BlockHash = binding.BlockHash
			input.BlockHeight = binding.BlockHeight
		}

		inputs = append(inputs, input)
	}
}

func (b *Builder) collectOutputs(anchor *chains.Binding) ([]TxOutput, error) {
	var outputs []TxOutput

	for {
		address, err := b.ask("Destination address (empty for change or to finish): ")
		if err != nil {
			return nil, err
		}

		output := TxOutput{Address: address}

		if address == "" {
			pathExpr, err := b.ask("BIP-32 path of the change output (empty to finish): ")
			if err != nil {
				return nil, err
			}
			if pathExpr == "" {
				return outputs, nil
			}

			changePath, err := path.Parse(pathExpr)
			if err != nil {
				return nil, err
			}
			output.Path = changePath
		}

		amount, err := b.askUint("Amount in base units: ", 64, nil)
		if err != nil {
			return nil, err
		}
		output.Amount = amount

		scriptType, err := b.askScriptType(path.DefaultScriptType(output.Path))
		if err != nil {
			return nil, err
		}
		output.ScriptType = scriptType

		if b.chain.Bip115 {
			output.BlockHash = anchor.BlockHash
			output.BlockHeight = anchor.BlockHeight
		}

		outputs = append(outputs, output)
	}
}

func (b *Builder) ask(prompt string) (string, error) {
	fmt.Fprint(b.out, prompt)

	line, err := b.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "failed to read input")
	}

	return strings.TrimSpace(line), nil
}

func (b *Builder) askUint(prompt string, bitSize int, defaultValue *uint64) (uint64, error) {
	answer, err := b.ask(prompt)
	if err != nil {
		return 0, err
	}

	if answer == "" {
		if defaultValue == nil {
			return 0, clierrors.New(clierrors.CategoryMalformedInput, "a value is required")
		}
		return *defaultValue, nil
	}

	value, err := strconv.ParseUint(answer, 10, bitSize)
	if err != nil {
		return 0, clierrors.New(clierrors.CategoryMalformedInput, "invalid number %q", answer)
	}

	return value, nil
}

func (b *Builder) askScriptType(defaultType path.ScriptType) (path.ScriptType, error) {
	answer, err := b.ask(fmt.Sprintf("Script type (address, segwit, p2shsegwit) [%s]: ", defaultType))
	if err != nil {
		return 0, err
	}

	if answer == "" {
		return defaultType, nil
	}

	return path.ParseScriptType(answer)
}

// parsePrevOutputRef splits "txid:index", requiring exactly one separator
// between a hex transaction id and an integer output index.
func parsePrevOutputRef(ref string) (string, uint32, error) {
	parts := strings.Split(ref, ":")
	if len(parts) != 2 {
		return "", 0, clierrors.New(clierrors.CategoryMalformedInput, "previous output %q must be txid:index", ref)
	}

	txid := strings.ToLower(parts[0])
	if txid == "" {
		return "", 0, clierrors.New(clierrors.CategoryMalformedInput, "previous output %q has an empty transaction id", ref)
	}

	if _, err := hex.DecodeString(txid); err != nil {
		return "", 0, clierrors.New(clierrors.CategoryMalformedInput, "previous output id %q is not hex", parts[0])
	}

	index, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return "", 0, clierrors.New(clierrors.CategoryMalformedInput, "previous output index %q is not a number", parts[1])
	}

	return txid, uint32(index), nil
}
