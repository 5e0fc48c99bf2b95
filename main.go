package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"tetris-tsr/internal/board"
	"tetris-tsr/internal/catalog"
	"tetris-tsr/internal/events"
	"tetris-tsr/internal/game"
	"tetris-tsr/internal/scoring"
	"tetris-tsr/internal/state"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

const frameInterval = 50 * time.Millisecond

var (
	redStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	greenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	scoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	boldStyle  = lipgloss.NewStyle().Bold(true)
	ghostStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	panelStyle = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder())
	boardStyle = lipgloss.NewStyle().Border(lipgloss.ThickBorder())

	pieceColors = []lipgloss.Color{"14", "11", "13", "10", "9", "12", "208", "6", "3", "5"}
)

type keyMap struct {
	Left, Right, Down, Rotate, Drop, Restart, Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Down, k.Rotate, k.Drop, k.Restart, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Left:    key.NewBinding(key.WithKeys("left", "a"), key.WithHelp("←/a", "left")),
	Right:   key.NewBinding(key.WithKeys("right", "d"), key.WithHelp("→/d", "right")),
	Down:    key.NewBinding(key.WithKeys("down", "s"), key.WithHelp("↓/s", "soft drop")),
	Rotate:  key.NewBinding(key.WithKeys("up", "w"), key.WithHelp("↑/w", "rotate")),
	Drop:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "hard drop")),
	Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type LocalState struct {
	Session  *game.Session
	Help     help.Model
	LastTick time.Time
	Message  string
	Banner   string
	logger   *log.Logger
}

type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

type options struct {
	catalogPaths []string
	seed         int
	keepScores   bool
}

func initialModel(opts options, logger *log.Logger) (*LocalState, error) {
	cat := catalog.Default()
	if len(opts.catalogPaths) > 0 {
		c, err := catalog.Load(opts.catalogPaths)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		cat = c
	}

	stateOpts := state.Options{Catalog: cat, Logger: logger}
	if opts.seed != 0 {
		stateOpts.Rand = rand.New(rand.NewPCG(uint64(opts.seed), uint64(opts.seed)))
	}

	g, err := game.NewGame(stateOpts)
	if err != nil {
		return nil, err
	}

	var storage scoring.ScoreStorage
	if opts.keepScores {
		s, err := scoring.NewJSONFileStorage()
		if err != nil {
			return nil, fmt.Errorf("failed to create score storage: %w", err)
		}
		storage = s
	}

	sess, err := game.NewSession(g, storage, logger)
	if err != nil {
		return nil, err
	}

	m := &LocalState{
		Session: sess,
		Help:    help.New(),
		logger:  logger,
	}
	g.Subscribe(m.onEvent)
	sess.OnMilestone = func(ms game.Milestone) {
		m.Banner = ms.Title
	}
	g.Init()
	return m, nil
}

// onEvent turns engine events into the status line shown under the board.
func (s *LocalState) onEvent(e events.Event) {
	switch e := e.(type) {
	case events.PieceSpawned:
		s.Message = fmt.Sprintf("Falling: %s", e.Code)
	case events.LinesCleared:
		s.Message = fmt.Sprintf("Cleared %d line(s)!", e.Count)
	case events.LevelChanged:
		s.Message = fmt.Sprintf("Level %d! Drop every %v", e.Level, e.DropInterval)
	case events.GameOver:
		s.Message = fmt.Sprintf("Game over! Final score: %d", e.FinalScore)
	case events.Restarted:
		s.Message = "New game"
	}
}

func (s *LocalState) Init() tea.Cmd {
	s.LastTick = time.Now()
	return tickCmd()
}

func (s *LocalState) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	g := s.Session.Game

	switch msg := msg.(type) {
	case TickMsg:
		now := time.Time(msg)
		g.Tick(now.Sub(s.LastTick))
		s.LastTick = now
		return s, tickCmd()
	case tea.WindowSizeMsg:
		s.Help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return s, tea.Quit
		case key.Matches(msg, keys.Restart):
			g.Restart()
		case key.Matches(msg, keys.Left):
			g.MoveLeft()
		case key.Matches(msg, keys.Right):
			g.MoveRight()
		case key.Matches(msg, keys.Down):
			g.SoftDrop()
		case key.Matches(msg, keys.Rotate):
			g.Rotate()
		case key.Matches(msg, keys.Drop):
			g.HardDrop()
		}
	}

	return s, nil
}

func cellStyle(c *catalog.Catalog, id catalog.ID) lipgloss.Style {
	idx := c.IndexOf(id)
	if idx < 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
	return lipgloss.NewStyle().Foreground(pieceColors[idx%len(pieceColors)])
}

func (s *LocalState) RenderBoard() string {
	g := s.Session.Game
	cat := g.Catalog()
	grid := g.SnapshotBoard()

	var falling [board.Height][board.Width]bool
	var ghost [board.Height][board.Width]bool
	cur, hasCur := g.SnapshotCurrentPiece()
	if hasCur {
		ghostY, _ := g.GhostY()
		mark(&ghost, cur.Shape, cur.X, ghostY)
		mark(&falling, cur.Shape, cur.X, cur.Y)
	}

	var b strings.Builder
	for y := 0; y < board.Height; y++ {
		for x := 0; x < board.Width; x++ {
			switch {
			case falling[y][x]:
				b.WriteString(cellStyle(cat, cur.Type).Render("██"))
			case grid[y][x] != catalog.Empty:
				b.WriteString(cellStyle(cat, grid[y][x]).Render("██"))
			case ghost[y][x]:
				b.WriteString(ghostStyle.Render("░░"))
			default:
				b.WriteString(emptyStyle.Render(" ·"))
			}
		}
		if y < board.Height-1 {
			b.WriteByte('\n')
		}
	}
	return boardStyle.Render(b.String())
}

func mark(dst *[board.Height][board.Width]bool, shape [][]bool, px, py int) {
	for i, row := range shape {
		for j, filled := range row {
			x, y := px+j, py+i
			if filled && x >= 0 && x < board.Width && y >= 0 && y < board.Height {
				dst[y][x] = true
			}
		}
	}
}

func (s *LocalState) renderNext() string {
	g := s.Session.Game
	next, ok := g.SnapshotNextPiece()
	if !ok {
		return ""
	}
	style := cellStyle(g.Catalog(), next.Type)
	var b strings.Builder
	for i, row := range next.Shape {
		for _, filled := range row {
			if filled {
				b.WriteString(style.Render("██"))
			} else {
				b.WriteString("  ")
			}
		}
		if i < len(next.Shape)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String() + "\n" + next.Code
}

func (s *LocalState) View() string {
	g := s.Session.Game

	stats := fmt.Sprintf("SCORE %d\nLEVEL %d\nLINES %d",
		g.Score(), g.Level(), g.Lines())
	seen, total := s.Session.Progress()
	stats += fmt.Sprintf("\nSEEN  %d/%d", seen, total)
	if h := s.Session.History; h != nil && h.GetHighScoreEntry() != nil {
		stats += fmt.Sprintf("\nBEST  %d", h.GetHighScoreEntry().Score)
	}

	side := lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Render(boldStyle.Render("NEXT")+"\n"+s.renderNext()),
		panelStyle.Render(scoreStyle.Render(stats)),
	)
	if s.Banner != "" {
		side = lipgloss.JoinVertical(lipgloss.Left, side, greenStyle.Render("★ "+s.Banner))
	}
	display := lipgloss.JoinHorizontal(lipgloss.Top, s.RenderBoard(), side)

	switch {
	case g.IsGameOver():
		display += "\n" + redStyle.Render(s.Message+" Press r to play again.")
		if h := s.Session.History; h != nil {
			for _, entry := range h.GetNScoreEntries(5) {
				display += fmt.Sprintf("\n  * %d (%d lines) on %s", entry.Score, entry.Lines, entry.Timestamp)
			}
		}
	case s.Message != "":
		display += "\n" + greenStyle.Render(s.Message)
	}
	if err := s.Session.Err(); err != nil {
		display += "\n" + redStyle.Render("Could not save score: "+err.Error())
	}

	return display + "\n" + s.Help.View(keys)
}

type strictIntFlag int

func (i *strictIntFlag) String() string {
	return fmt.Sprint(int(*i))
}

func (i *strictIntFlag) Set(s string) error {
	if s == "true" {
		return fmt.Errorf("value required (format: -flag=value)")
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*i = strictIntFlag(v)
	return nil
}

// pathListFlag collects every occurrence of a repeatable flag.
type pathListFlag []string

func (p *pathListFlag) String() string {
	return strings.Join(*p, ",")
}

func (p *pathListFlag) Set(s string) error {
	if s == "" {
		return fmt.Errorf("path must not be empty")
	}
	*p = append(*p, s)
	return nil
}

func newLogger(path, level string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard), func() {}, nil
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "tetris-tsr",
	})
	return logger, func() { f.Close() }, nil
}

func main() {
	var seed strictIntFlag
	var catalogs pathListFlag
	var logPath string
	var logLevel string
	var forceColor bool
	var noScores bool

	flag.Var(&catalogs, "catalog", "Catalog YAML file or directory (repeatable)")
	flag.Var(&seed, "seed", "Seed for the piece generator (0 picks a random seed)")
	flag.StringVar(&logPath, "log", "", "Write logs to this file")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&forceColor, "color", false, "Force 256-colour output")
	flag.BoolVar(&noScores, "no-scores", false, "Do not read or write the high-score file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		fmt.Fprintf(os.Stderr, "  -catalog=PATH      Catalog YAML file or directory, may be repeated\n")
		fmt.Fprintf(os.Stderr, "  -seed=N            Seed for the piece generator\n")
		fmt.Fprintf(os.Stderr, "  -log=FILE          Write logs to FILE\n")
		fmt.Fprintf(os.Stderr, "  -log-level=LEVEL   debug, info, warn or error (default info)\n")
		fmt.Fprintf(os.Stderr, "  -color             Force 256-colour output\n")
		fmt.Fprintf(os.Stderr, "  -no-scores         Do not keep a high-score history\n")
		fmt.Fprintf(os.Stderr, "  -h, --help         Show this help message\n")
		fmt.Fprintf(os.Stderr, "\nWithout -catalog the classic seven pieces are used.\n")
	}

	flag.Parse()
	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(flag.Args(), " "))
		flag.Usage()
		os.Exit(2)
	}

	logger, closeLog, err := newLogger(logPath, logLevel)
	if err != nil {
		fmt.Printf("Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if forceColor {
		lipgloss.SetColorProfile(termenv.ANSI256)
	}

	model, err := initialModel(options{
		catalogPaths: catalogs,
		seed:         int(seed),
		keepScores:   !noScores,
	}, logger)
	if err != nil {
		fmt.Printf("Error initializing model: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("program failed", "err", err)
		fmt.Printf("Error starting the program: %v\n", err)
	}
}
