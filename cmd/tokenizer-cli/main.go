// Command tokenizer-cli encodes, decodes, and interactively explores text
// against any registered BPE encoding or a SentencePiece Unigram model.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arborcode/tokensuite/bpe"
	"github.com/arborcode/tokensuite/unigram"
)

// tokenizer is the minimal surface both the bpe and unigram packages expose,
// letting the CLI subcommands stay agnostic of which one they're driving.
type tokenizer interface {
	encode(text string) ([]int, []string, error)
	decode(ids []int) (string, error)
}

type bpeTokenizer struct{ enc *bpe.BpeEncoding }

func (t bpeTokenizer) encode(text string) ([]int, []string, error) {
	ranks := t.enc.EncodeWithSpecialTokens(text)
	ids := make([]int, len(ranks))
	pieces := make([]string, len(ranks))
	for i, r := range ranks {
		b, err := t.enc.DecodeBytes(bpe.Ranks{r})
		if err != nil {
			return nil, nil, err
		}
		ids[i] = int(r)
		pieces[i] = string(b)
	}
	return ids, pieces, nil
}

func (t bpeTokenizer) decode(ids []int) (string, error) {
	ranks := make([]bpe.Rank, len(ids))
	for i, id := range ids {
		ranks[i] = bpe.Rank(id)
	}
	return t.enc.Decode(ranks)
}

type unigramTokenizer struct{ model *unigram.Model }

func (t unigramTokenizer) encode(text string) ([]int, []string, error) {
	ids, err := t.model.Encode(text)
	if err != nil {
		return nil, nil, err
	}
	pieces := make([]string, len(ids))
	for i, id := range ids {
		pieces[i], _ = t.model.Decode([]int{id})
	}
	return ids, pieces, nil
}

func (t unigramTokenizer) decode(ids []int) (string, error) {
	return t.model.Decode(ids)
}

func loadTokenizer(ctx context.Context, kind, name string) (tokenizer, error) {
	switch kind {
	case "unigram":
		m, err := unigram.LoadSentencePiece(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("loading unigram model %s: %w", name, err)
		}
		return unigramTokenizer{model: m}, nil
	default:
		enc, err := bpe.GetBpe(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("loading encoding %s: %w", name, err)
		}
		return bpeTokenizer{enc: enc}, nil
	}
}

func main() {
	var kind, name string

	root := &cobra.Command{
		Use:   "tokenizer-cli",
		Short: "Encode, decode, and interactively explore text through a tokenizer",
	}
	root.PersistentFlags().StringVar(&kind, "kind", "bpe",
		"tokenizer kind [bpe, unigram]")
	root.PersistentFlags().StringVar(&name, "tokenizer", "cl100k_base",
		"registered encoding name, or a SentencePiece model path/URL when --kind=unigram")

	encodeCmd := &cobra.Command{
		Use:   "encode [text]",
		Short: "Encode text into token ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := loadTokenizer(cmd.Context(), kind, name)
			if err != nil {
				return err
			}
			ids, pieces, err := tok.encode(args[0])
			if err != nil {
				return err
			}
			fmt.Println(ids)
			for i, id := range ids {
				fmt.Printf("%d\t%q\n", id, pieces[i])
			}
			return nil
		},
	}

	decodeCmd := &cobra.Command{
		Use:   "decode [id ...]",
		Short: "Decode a sequence of token ids into text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := loadTokenizer(cmd.Context(), kind, name)
			if err != nil {
				return err
			}
			ids := make([]int, len(args))
			for i, a := range args {
				if _, err := fmt.Sscanf(a, "%d", &ids[i]); err != nil {
					return fmt.Errorf("parsing id %q: %w", a, err)
				}
			}
			text, err := tok.decode(ids)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactively encode lines of input, showing ids and pieces",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := loadTokenizer(cmd.Context(), kind, name)
			if err != nil {
				return err
			}
			reader := bufio.NewReader(os.Stdin)
			for {
				fmt.Print(">>> ")
				line, readErr := reader.ReadString('\n')
				if readErr != nil {
					return nil
				}
				line = strings.ReplaceAll(strings.TrimSuffix(line, "\n"), "\\n", "\n")
				ids, pieces, encErr := tok.encode(line)
				if encErr != nil {
					log.Println(encErr)
					continue
				}
				fmt.Printf("%v\n", ids)
				for _, p := range pieces {
					fmt.Printf("|%s", p)
				}
				fmt.Println()
			}
		},
	}

	root.AddCommand(encodeCmd, decodeCmd, replCmd)
	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
