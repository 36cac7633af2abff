package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

const playHelp = `Commands:
  move <from> <to> [promotion]   relay a move, e.g. "move e2 e4"
  draw                           offer a draw
  accept | decline               answer a draw offer
  resign                         resign the game
  over <result> [winner] [reason...]  report the game result
  help                           show this help
  quit                           leave the room`

// errQuit ends a play session at the user's request
var errQuit = errors.New("quit")

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game over the websocket relay",
		Long: `Open a websocket to the relay, create or join a room, and play from the terminal.

Every event from the server is printed as it arrives. Commands are read from stdin:

` + playHelp,
	}

	var name string

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a room and wait for an opponent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, Frame{Event: "create_room", Data: map[string]any{"player_name": name}})
		},
	}
	create.Flags().StringVar(&name, "name", "", "Display name")

	join := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a room by its invite code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, Frame{Event: "join_room", Data: map[string]any{"room_id": args[0], "player_name": name}})
		},
	}
	join.Flags().StringVar(&name, "name", "", "Display name")

	cmd.AddCommand(create, join)
	return cmd
}

// Frame is an outgoing relay event
type Frame struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

// ParseCommand turns one line of user input into a frame.
// Blank lines return a nil frame and no error.
func ParseCommand(line string) (*Frame, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}

	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "move", "m":
		if len(args) < 2 || len(args) > 3 {
			return nil, errors.New("usage: move <from> <to> [promotion]")
		}
		move := map[string]any{"from": args[0], "to": args[1]}
		if len(args) == 3 {
			move["promotion"] = args[2]
		}
		return &Frame{Event: "make_move", Data: map[string]any{"move": move}}, nil
	case "draw":
		return &Frame{Event: "offer_draw", Data: map[string]any{}}, nil
	case "accept":
		return &Frame{Event: "draw_response", Data: map[string]any{"accepted": true}}, nil
	case "decline":
		return &Frame{Event: "draw_response", Data: map[string]any{"accepted": false}}, nil
	case "resign":
		return &Frame{Event: "resign_game", Data: map[string]any{}}, nil
	case "over":
		if len(args) == 0 {
			return nil, errors.New("usage: over <result> [winner] [reason...]")
		}
		data := map[string]any{"result": args[0]}
		if len(args) > 1 {
			data["winner"] = args[1]
		}
		if len(args) > 2 {
			data["reason"] = strings.Join(args[2:], " ")
		}
		return &Frame{Event: "game_over", Data: data}, nil
	case "quit", "exit":
		return nil, errQuit
	default:
		return nil, fmt.Errorf("unknown command %q, type help", fields[0])
	}
}

func runPlay(cmd *cobra.Command, first Frame) error {
	wsURL, err := cfg.WebsocketURL()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return Play(ctx, wsURL, first, cmd.InOrStdin(), NewOutput(cfg.Output, cmd.OutOrStdout()))
}

// Play runs one interactive session: it sends first, prints every inbound
// event, and relays commands read from in until quit, EOF, or the server
// closes the connection
func Play(ctx context.Context, wsURL string, first Frame, in io.Reader, out *Output) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	var writeMu sync.Mutex
	send := func(f Frame) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteJSON(f)
	}

	readErr := make(chan error, 1)
	go func() {
		readErr <- readEvents(conn, out)
	}()

	if err := send(first); err != nil {
		return fmt.Errorf("send %s: %w", first.Event, err)
	}

	done := make(chan struct{})
	defer close(done)
	lines := scanLines(in, done)

	for {
		select {
		case <-ctx.Done():
			closeConn(conn, &writeMu)
			return nil
		case err := <-readErr:
			return err
		case line, ok := <-lines:
			if !ok {
				closeConn(conn, &writeMu)
				return nil
			}
			if strings.TrimSpace(line) == "help" {
				out.PrintMessage(playHelp)
				continue
			}
			frame, err := ParseCommand(line)
			if errors.Is(err, errQuit) {
				closeConn(conn, &writeMu)
				return nil
			}
			if err != nil {
				out.PrintMessage(err.Error())
				continue
			}
			if frame == nil {
				continue
			}
			if err := send(*frame); err != nil {
				return fmt.Errorf("send %s: %w", frame.Event, err)
			}
		}
	}
}

// scanLines feeds lines from in until EOF or done is closed. A reader
// blocked mid-read is only released by its next line or EOF.
func scanLines(in io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return lines
}

// readEvents prints inbound events until the connection closes.
// A normal close from the server returns nil.
func readEvents(conn *websocket.Conn, out *Output) error {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				out.PrintMessage("Disconnected")
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		var env struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(frame, &env); err != nil {
			out.PrintMessage("unreadable event: " + string(frame))
			continue
		}
		out.Print(Event{Time: time.Now(), Event: env.Event, Data: env.Data})
	}
}

func closeConn(conn *websocket.Conn, writeMu *sync.Mutex) {
	writeMu.Lock()
	defer writeMu.Unlock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}
