package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/sporkfish/sporkfish-go/pkg/engine"
	"github.com/sporkfish/sporkfish-go/pkg/engine/console"
	"github.com/sporkfish/sporkfish-go/pkg/engine/uci"
	"github.com/sporkfish/sporkfish-go/pkg/eval"
	"github.com/sporkfish/sporkfish-go/pkg/search"
	"github.com/seekerror/logw"
	"os"
	"time"
)

var (
	noise = flag.Int("noise", 10, "Evaluation noise in millipawns (zero if deterministic)")
	book  = flag.String("book", "", "Path to a PolyGlot opening book (.bin), if any")
)

// loadBook opens a PolyGlot book if one was configured, else returns engine.NoBook.
func loadBook(ctx context.Context) engine.Book {
	if *book == "" {
		return engine.NoBook
	}

	f, err := os.Open(*book)
	if err != nil {
		logw.Exitf(ctx, "Failed to open book %v: %v", *book, err)
	}
	defer f.Close()

	entries, err := engine.ReadPolyGlotEntries(f)
	if err != nil {
		logw.Exitf(ctx, "Failed to read book %v: %v", *book, err)
	}
	return engine.NewPolyGlotBook(entries, time.Now().UnixNano())
}

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: morlock [options]

MORLOCK is a simple UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	s := search.AlphaBeta{
		Eval:     eval.PeSTO{},
		Quiesce:  search.Quiescence{Eval: eval.PeSTO{}},
		NullMove: true,
		Futility: true,
	}
	e := engine.New(ctx, "morlock", "herohde", s,
		engine.WithTable(search.NewTranspositionTable),
		engine.WithZobrist(time.Now().UnixNano()),
		engine.WithOptions(engine.Options{Depth: 6, Hash: 64, Noise: uint(*noise)}))

	b := loadBook(ctx)

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		// Use UCI protocol.

		driver, out := uci.NewDriver(ctx, e, in, uci.UseBook(b, time.Now().UnixNano()))
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	case console.ProtocolName:
		driver, out := console.NewDriver(ctx, e, s, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}
