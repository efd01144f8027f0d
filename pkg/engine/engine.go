package engine

import (
	"context"
	"fmt"
	"github.com/sporkfish/sporkfish-go/pkg/board"
	"github.com/sporkfish/sporkfish-go/pkg/board/fen"
	"github.com/sporkfish/sporkfish-go/pkg/eval"
	"github.com/sporkfish/sporkfish-go/pkg/search"
	"github.com/sporkfish/sporkfish-go/pkg/search/searchctl"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"runtime"
	"strconv"
	"sync"
)

// defaultTTCapacityLog2 is used when TTEnabled is explicitly true but neither Hash nor
// TTCapacityLog2 was given a size.
const defaultTTCapacityLog2 = 16

var version = build.NewVersion(0, 89, 3)

// Options are search creation options. Fields follow the recognized engine_init config
// surface: max_depth, tt_enabled, tt_capacity_log2, null_move, futility, delta, aspiration,
// move_order, mvv_lva_weight, killer_weight, search_mode, time_weight, increment_weight.
// A field left at its zero lang.Optional value inherits whatever the root search.Search
// passed to New was already configured with; only a field explicitly set via ApplyOption
// or a struct literal overrides it. MoveOrder, MVVLVAWeight and KillerWeight are the
// exception: they always replace the root's move ordering, unset meaning their defaults.
type Options struct {
	// Depth is the max_depth search depth limit. If zero, there is no limit. Overridden
	// by search options if provided.
	Depth uint
	// Hash is the transposition table size in MB. Takes precedence over TTCapacityLog2
	// when both are set. If zero and TTCapacityLog2 is also zero, the engine will not use
	// a transposition table unless TTEnabled is explicitly set true.
	Hash uint
	// Noise adds some millipawn randomness to the leaf evaluations.
	Noise uint

	// TTEnabled overrides whether a transposition table is used. Unset defaults to
	// Hash>0 || TTCapacityLog2>0.
	TTEnabled lang.Optional[bool]
	// TTCapacityLog2 is the log2 of the desired table entry count. Used when Hash is zero.
	TTCapacityLog2 uint

	// NullMove, Futility and Delta override the corresponding AlphaBeta/Quiescence pruning
	// toggles. Unset inherits the root search.Search's own configuration.
	NullMove lang.Optional[bool]
	Futility lang.Optional[bool]
	Delta    lang.Optional[bool]

	// Aspiration overrides whether the iterative deepening driver narrows its search
	// window around the previous iteration's score. Unset inherits the driver's default
	// (enabled).
	Aspiration lang.Optional[bool]

	// MoveOrder selects the full-search move ordering scheme. Unset defaults to
	// search.CompositeOrder.
	MoveOrder lang.Optional[search.MoveOrder]
	// MVVLVAWeight and KillerWeight scale their respective move-ordering signals. Zero
	// means the default weight of 1.
	MVVLVAWeight float64
	KillerWeight float64

	// SearchMode selects the root search driver. Unset defaults to searchctl.NegamaxSingle
	// (a single Iterative worker).
	SearchMode lang.Optional[searchctl.SearchMode]
	// Workers is the worker count for SearchMode searchctl.NegamaxSMP. Zero means
	// runtime.GOMAXPROCS(0).
	Workers uint

	// TimeWeight and IncrementWeight are accepted and stored by ApplyOption. The time
	// manager does not read them: its per-move budget comes from searchctl.TimeControl
	// alone and does not change with either weight.
	TimeWeight      float64
	IncrementWeight float64
}

func (o Options) String() string {
	return fmt.Sprintf("{depth=%v, hash=%v, noise=%v, search_mode=%v, move_order=%v}",
		o.Depth, o.Hash, o.Noise, o.SearchMode, o.MoveOrder)
}

// ApplyOption validates and applies a single named config option by its spec name
// (e.g. "null_move", "move_order"), the enforcement boundary for "unknown options at
// load time are an error." The change is picked up on the next Reset.
func (e *Engine) ApplyOption(name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch name {
	case "max_depth":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid max_depth: %v", value)
		}
		e.opts.Depth = uint(n)
	case "hash":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid hash: %v", value)
		}
		e.opts.Hash = uint(n)
	case "noise":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid noise: %v", value)
		}
		e.opts.Noise = uint(n)
	case "tt_enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid tt_enabled: %v", value)
		}
		e.opts.TTEnabled = lang.Some(b)
	case "tt_capacity_log2":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid tt_capacity_log2: %v", value)
		}
		e.opts.TTCapacityLog2 = uint(n)
	case "null_move":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid null_move: %v", value)
		}
		e.opts.NullMove = lang.Some(b)
	case "futility":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid futility: %v", value)
		}
		e.opts.Futility = lang.Some(b)
	case "delta":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid delta: %v", value)
		}
		e.opts.Delta = lang.Some(b)
	case "aspiration":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid aspiration: %v", value)
		}
		e.opts.Aspiration = lang.Some(b)
	case "move_order":
		mo, err := search.ParseMoveOrder(value)
		if err != nil {
			return err
		}
		e.opts.MoveOrder = lang.Some(mo)
	case "mvv_lva_weight":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid mvv_lva_weight: %v", value)
		}
		e.opts.MVVLVAWeight = f
	case "killer_weight":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid killer_weight: %v", value)
		}
		e.opts.KillerWeight = f
	case "search_mode":
		sm, err := searchctl.ParseSearchMode(value)
		if err != nil {
			return err
		}
		e.opts.SearchMode = lang.Some(sm)
	case "time_weight":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid time_weight: %v", value)
		}
		e.opts.TimeWeight = f
	case "increment_weight":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid increment_weight: %v", value)
		}
		e.opts.IncrementWeight = f
	default:
		return fmt.Errorf("unknown option: %v", name)
	}
	return nil
}

// Engine encapsulates game-playing logic, search and evaluation.
type Engine struct {
	name, author string

	// root is the template search.Search supplied to New. Options-driven pruning and
	// move-ordering toggles are overlaid onto it (when it is a search.AlphaBeta) each
	// time the launcher is rebuilt.
	root search.Search
	// launcherOverride, if set via WithLauncher, pins the launcher regardless of
	// Options.SearchMode.
	launcherOverride searchctl.Launcher

	launcher searchctl.Launcher
	factory  search.TranspositionTableFactory
	zt       *board.ZobristTable
	seed     int64
	opts     Options

	b         *board.Board
	tt        search.TranspositionTable
	noise     eval.Random
	tablebase TablebaseProbe
	active    searchctl.Handle
	mu        sync.Mutex
}

// Option is an engine creation option.
type Option func(*Engine)

// WithTable configures the engine to use the given transposition table factory.
func WithTable(factory search.TranspositionTableFactory) Option {
	return func(e *Engine) {
		e.factory = factory
	}
}

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// WithZobrist configures the engine to use the given random seed instead of the
// default seed of zero.
func WithZobrist(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithTablebase configures the engine to consult the given tablebase before searching.
// Defaults to NoTablebase.
func WithTablebase(t TablebaseProbe) Option {
	return func(e *Engine) {
		e.tablebase = t
	}
}

// WithLauncher overrides the searchctl.Launcher selection that Options.SearchMode would
// otherwise drive, pinning every Analyze call to the given Launcher. Use this to supply a
// custom searchctl.LazySMP configuration or any other Launcher not reachable via
// search_mode alone.
func WithLauncher(l searchctl.Launcher) Option {
	return func(e *Engine) {
		e.launcherOverride = l
	}
}

func New(ctx context.Context, name, author string, root search.Search, opts ...Option) *Engine {
	e := &Engine{
		name:      name,
		author:    author,
		root:      root,
		factory:   search.NewTranspositionTable,
		tablebase: NoTablebase,
	}
	for _, fn := range opts {
		fn(e)
	}
	e.zt = board.NewZobristTable(e.seed)

	_ = e.Reset(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// buildRoot overlays Options-driven pruning and move-ordering overrides onto the root
// search.Search template supplied to New. Implementations other than search.AlphaBeta are
// returned unchanged, since there is nothing recognized to overlay.
func (e *Engine) buildRoot() search.Search {
	ab, ok := e.root.(search.AlphaBeta)
	if !ok {
		return e.root
	}

	if v, ok := e.opts.NullMove.V(); ok {
		ab.NullMove = v
	}
	if v, ok := e.opts.Futility.V(); ok {
		ab.Futility = v
	}
	if q, ok := ab.Quiesce.(search.Quiescence); ok {
		if v, ok := e.opts.Delta.V(); ok {
			q.NoDeltaPruning = !v
		}
		ab.Quiesce = q
	}

	order := search.CompositeOrder
	if v, ok := e.opts.MoveOrder.V(); ok {
		order = v
	}
	weight := e.opts.MVVLVAWeight
	if weight == 0 {
		weight = 1
	}
	explore, killersEnabled := search.BuildExploration(order, weight)
	ab.Explore = explore
	ab.DisableKillers = !killersEnabled
	ab.KillerWeight = e.opts.KillerWeight

	return ab
}

// buildLauncher selects the searchctl.Launcher driving root, per Options.SearchMode,
// unless WithLauncher pinned one explicitly.
func (e *Engine) buildLauncher(root search.Search) searchctl.Launcher {
	if e.launcherOverride != nil {
		return e.launcherOverride
	}

	noAspiration := false
	if v, ok := e.opts.Aspiration.V(); ok {
		noAspiration = !v
	}

	mode := searchctl.NegamaxSingle
	if v, ok := e.opts.SearchMode.V(); ok {
		mode = v
	}

	if mode == searchctl.NegamaxSMP {
		workers := int(e.opts.Workers)
		if workers == 0 {
			workers = runtime.GOMAXPROCS(0)
		}
		return &searchctl.LazySMP{Root: root, Workers: workers, NoAspiration: noAspiration}
	}
	return &searchctl.Iterative{Root: root, NoAspiration: noAspiration}
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opts
}

func (e *Engine) SetDepth(depth uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Depth = depth
}

func (e *Engine) SetHash(size uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Hash = size
}

func (e *Engine) SetNoise(millipawns uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Noise = millipawns
}

// Board returns a forked board.
func (e *Engine) Board() *board.Board {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.Fork()
}

// Position returns the current position in FEN format. Convenience function.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fen.Encode(e.b.Position(), e.b.Turn(), e.b.NoProgress(), e.b.FullMoves())
}

// Reset resets the engine to a new starting position in FEN format.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Reset %v, depth=%v, TT=%vMB, noise=%vcp", position, e.opts.Depth, e.opts.Hash, e.opts.Noise/10)

	_, _ = e.haltSearchIfActive(ctx)

	pos, turn, noprogress, fullmoves, err := fen.Decode(position)
	if err != nil {
		return err
	}
	e.b = board.NewBoard(e.zt, pos, turn, noprogress, fullmoves)

	ttEnabled := e.opts.Hash > 0 || e.opts.TTCapacityLog2 > 0
	if v, ok := e.opts.TTEnabled.V(); ok {
		ttEnabled = v
	}
	e.tt = search.NoTranspositionTable{}
	if ttEnabled {
		size := uint64(e.opts.Hash) << 20
		if size == 0 && e.opts.TTCapacityLog2 > 0 {
			size = uint64(1) << (e.opts.TTCapacityLog2 + 4)
		}
		if size == 0 {
			size = uint64(1) << (defaultTTCapacityLog2 + 4)
		}
		e.tt = e.factory(ctx, size)
	}
	e.noise = eval.Random{}
	if e.opts.Noise > 0 {
		e.noise = eval.NewRandom(int(e.opts.Noise/10), e.seed)
	}

	e.launcher = e.buildLauncher(e.buildRoot())

	logw.Infof(ctx, "New board: %v", e.b)
	return nil
}

// Move selects the given move, usually an opponent move.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Move %v", move)

	candidate, err := board.ParseMove(move)
	if err != nil {
		return fmt.Errorf("invalid move: %v", err)
	}

	_, _ = e.haltSearchIfActive(ctx)

	moves := e.b.Position().PseudoLegalMoves(e.b.Turn())
	for _, m := range moves {
		if !candidate.Equals(m) {
			continue
		}

		// Candidate is at least pseudo-legal.

		if !e.b.PushMove(m) {
			return fmt.Errorf("illegal move: %v", m)
		}

		logw.Infof(ctx, "Move %v: %v", m, e.b)
		return nil
	}
	return fmt.Errorf("invalid move: %v", candidate)
}

// TakeBack undoes the latest move.
func (e *Engine) TakeBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	m, ok := e.b.PopMove()
	if !ok {
		return fmt.Errorf("no move to take back")
	}

	logw.Infof(ctx, "Takeback %v", m)
	return nil
}

// Analyze analyzes the current position.
func (e *Engine) Analyze(ctx context.Context, opt searchctl.Options) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := opt.DepthLimit.V(); !ok {
		opt.DepthLimit = lang.Some(e.opts.Depth)
	}

	logw.Infof(ctx, "Analyze %v, opt=%v", e.b, opt)

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}

	position := fen.Encode(e.b.Position(), e.b.Turn(), e.b.NoProgress(), e.b.FullMoves())
	if outcome, dtz, ok := e.tablebase.Probe(ctx, position); ok {
		logw.Infof(ctx, "Tablebase hit: %v, dtz=%v", outcome, dtz)
	}

	handle, out := e.launcher.Launch(ctx, e.b.Fork(), e.tt, e.noise, opt)
	e.active = handle
	return out, nil
}

// Halt halts the active search and returns the principal variation, if any.
func (e *Engine) Halt(ctx context.Context) (search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Halt")

	pv, ok := e.haltSearchIfActive(ctx)
	if !ok {
		return search.PV{}, fmt.Errorf("no active search")
	}
	return pv, nil
}

func (e *Engine) haltSearchIfActive(ctx context.Context) (search.PV, bool) {
	if e.active != nil {
		pv := e.active.Halt()
		logw.Infof(ctx, "Search %v halted: %v", e.b, pv)

		e.active = nil
		return pv, true
	}
	return search.PV{}, false
}
