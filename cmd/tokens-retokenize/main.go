// Command tokens-retokenize converts a binary token stream produced under
// one BPE encoding into the equivalent stream under another, by decoding
// under the source vocabulary and re-encoding under the destination one.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/arborcode/tokensuite/bpe"
)

func main() {
	var (
		inputTokenizer  string
		outputTokenizer string
		contextSize     int
		inputFile       string
		outputFile      string
		in32            bool
		out32           bool
		padLiteral      string
	)

	root := &cobra.Command{
		Use:   "tokens-retokenize",
		Short: "Convert a binary token stream from one BPE vocabulary to another",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputFile == "" {
				return errors.New("must provide --input")
			}
			if inputTokenizer == outputTokenizer {
				return errors.New("--input-tokenizer and --output-tokenizer must differ")
			}

			ctx := context.Background()
			src, err := bpe.GetBpe(ctx, inputTokenizer)
			if err != nil {
				return fmt.Errorf("loading input tokenizer %s: %w", inputTokenizer, err)
			}
			dst, err := bpe.GetBpe(ctx, outputTokenizer)
			if err != nil {
				return fmt.Errorf("loading output tokenizer %s: %w", outputTokenizer, err)
			}
			padRanks := dst.EncodeWithSpecialTokens(padLiteral)
			if len(padRanks) != 1 {
				return fmt.Errorf("%q is not a single token for %s", padLiteral, outputTokenizer)
			}
			padToken := padRanks[0]

			raw, err := os.ReadFile(inputFile)
			if err != nil {
				return err
			}

			outFile, err := os.Create(outputFile)
			if err != nil {
				return err
			}
			defer outFile.Close()

			contextBytes := contextSize
			if in32 {
				contextBytes *= 4
			} else {
				contextBytes *= 2
			}

			for begin := 0; begin < len(raw); begin += contextBytes {
				end := begin + contextBytes
				if end > len(raw) {
					end = len(raw)
				}
				chunk := decodeBin(raw[begin:end], in32)
				if len(chunk) == 0 {
					continue
				}
				text, err := src.Decode(chunk)
				if err != nil {
					return fmt.Errorf("decoding source chunk: %w", err)
				}
				encoded := dst.Encode(text, nil)
				if len(encoded) > contextSize {
					encoded = encoded[:contextSize]
				}
				encoded = dst.TrimToValidUTF8(encoded)
				for len(encoded) < contextSize {
					encoded = append(encoded, padToken)
				}
				bin, err := encoded.ToBin(out32)
				if err != nil {
					return err
				}
				if _, err := outFile.Write(bin); err != nil {
					return err
				}
			}
			return nil
		},
	}

	root.Flags().StringVar(&inputTokenizer, "input-tokenizer", "cl100k_base", "source BPE encoding name")
	root.Flags().StringVar(&outputTokenizer, "output-tokenizer", "o200k_base", "destination BPE encoding name")
	root.Flags().IntVar(&contextSize, "context", 2048, "context window size, in tokens")
	root.Flags().StringVar(&inputFile, "input", "", "input binary token stream (required)")
	root.Flags().StringVar(&outputFile, "output", "retokenized.tokens", "output binary token stream path")
	root.Flags().BoolVar(&in32, "in32", false, "read input tokens as 32-bit")
	root.Flags().BoolVar(&out32, "out32", false, "write output tokens as 32-bit")
	root.Flags().StringVar(&padLiteral, "pad", "<|endoftext|>", "literal to use as the destination pad token")

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func decodeBin(bin []byte, use32 bool) bpe.Ranks {
	if use32 {
		return bpe.RanksFromBin32(bin)
	}
	return bpe.RanksFromBin16(bin)
}
