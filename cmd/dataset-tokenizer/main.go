// Command dataset-tokenizer bulk-tokenizes a directory tree of .txt files
// into fixed-size, padded binary token-stream chunks, reporting per-file and
// aggregate token-count statistics.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/yargevad/filepathx"
	"gonum.org/v1/gonum/stat"

	"github.com/arborcode/tokensuite/bpe"
)

// globTexts recursively finds every .txt file under dirPath.
func globTexts(dirPath string) ([]string, error) {
	matches, err := filepathx.Glob(dirPath + "/**/*.txt")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%s does not contain any .txt files", dirPath)
	}
	sort.Strings(matches)
	return matches, nil
}

// tokenizeFile reads path, encodes it with enc, and returns its token
// sequence padded and chunked into windows of contextSize.
func tokenizeFile(enc *bpe.BpeEncoding, path string, contextSize int, padToken bpe.Rank, eotToken bpe.Rank) ([]bpe.Ranks, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	tokens := enc.Encode(string(raw), nil)
	tokens = append(tokens, eotToken)

	var chunks []bpe.Ranks
	for begin := 0; begin < len(tokens); begin += contextSize {
		end := begin + contextSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunk := append(bpe.Ranks{}, tokens[begin:end]...)
		chunk = enc.TrimToValidUTF8(chunk)
		for len(chunk) < contextSize {
			chunk = append(chunk, padToken)
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func main() {
	var (
		tokenizerName string
		contextSize   int
		inputDir      string
		outputFile    string
		use32Bit      bool
		padLiteral    string
		eotLiteral    string
	)

	root := &cobra.Command{
		Use:   "dataset-tokenizer",
		Short: "Bulk-tokenize a directory of .txt files into fixed-size binary chunks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputDir == "" {
				return errors.New("must provide --input directory")
			}
			ctx := context.Background()
			enc, err := bpe.GetBpe(ctx, tokenizerName)
			if err != nil {
				return fmt.Errorf("loading tokenizer %s: %w", tokenizerName, err)
			}

			padToken, padErr := singleToken(enc, padLiteral)
			if padErr != nil {
				return padErr
			}
			eotToken, eotErr := singleToken(enc, eotLiteral)
			if eotErr != nil {
				return eotErr
			}

			infos, err := globTexts(inputDir)
			if err != nil {
				return err
			}

			outFile, err := os.Create(outputFile)
			if err != nil {
				return err
			}
			defer outFile.Close()

			tokenCounts := make([]float64, 0, len(infos))
			totalTokens := 0
			start := time.Now()

			for _, path := range infos {
				chunks, err := tokenizeFile(enc, path, contextSize, padToken, eotToken)
				if err != nil {
					return fmt.Errorf("tokenizing %s: %w", path, err)
				}
				fileTokens := 0
				for _, chunk := range chunks {
					bin, err := chunk.ToBin(use32Bit)
					if err != nil {
						return err
					}
					if _, err := outFile.Write(bin); err != nil {
						return err
					}
					fileTokens += len(chunk)
				}
				log.Printf("%s: %d tokens", path, fileTokens)
				tokenCounts = append(tokenCounts, float64(fileTokens))
				totalTokens += fileTokens
			}

			elapsed := time.Since(start).Seconds()
			mean, variance := stat.MeanVariance(tokenCounts, nil)
			log.Printf("%d files, %d tokens total, mean %.1f tokens/file (stddev %.1f), %.1f tokens/s",
				len(infos), totalTokens, mean, math.Sqrt(variance), float64(totalTokens)/elapsed)
			return nil
		},
	}

	root.Flags().StringVar(&tokenizerName, "tokenizer", "cl100k_base", "registered BPE encoding name")
	root.Flags().IntVar(&contextSize, "context", 2048, "context window size, in tokens")
	root.Flags().StringVar(&inputDir, "input", "", "input directory (required)")
	root.Flags().StringVar(&outputFile, "output", "tokenized.chunk", "output binary token stream path")
	root.Flags().BoolVar(&use32Bit, "use32", false, "write 32-bit tokens instead of 16-bit")
	root.Flags().StringVar(&padLiteral, "pad", "<|endoftext|>", "literal to use as the pad token")
	root.Flags().StringVar(&eotLiteral, "eot", "<|endoftext|>", "literal to append at the end of each file")

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func singleToken(enc *bpe.BpeEncoding, literal string) (bpe.Rank, error) {
	ranks := enc.EncodeWithSpecialTokens(literal)
	if len(ranks) != 1 {
		return 0, fmt.Errorf("%q is not a single token for %s", literal, enc.Name())
	}
	return ranks[0], nil
}

