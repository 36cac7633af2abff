package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Output handles formatting output based on the configured format.
// It is safe for concurrent use.
type Output struct {
	mu     sync.Mutex
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w (stdout if nil)
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	// Events are printed one per line so they can be piped
	if _, ok := data.(Event); ok {
		line, _ := json.Marshal(data)
		fmt.Fprintln(o.w, string(line))
		return
	}
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Room:
		o.printRoom(v)
	case HealthResult:
		o.printHealthResult(v)
	case Event:
		o.printEvent(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Room response type (matches API)
type Room struct {
	Code        string    `json:"code"`
	State       string    `json:"state"`
	MemberCount int       `json:"member_count"`
	White       string    `json:"white,omitempty"`
	Black       string    `json:"black,omitempty"`
	MoveCount   int       `json:"move_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// Event is one relay event received during play
type Event struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func (o *Output) printRoom(r Room) {
	fmt.Fprintf(o.w, "Room: %s\n", r.Code)
	fmt.Fprintf(o.w, "State: %s\n", r.State)
	fmt.Fprintf(o.w, "Members: %d\n", r.MemberCount)
	fmt.Fprintf(o.w, "White: %s\n", seatName(r.White))
	fmt.Fprintf(o.w, "Black: %s\n", seatName(r.Black))
	fmt.Fprintf(o.w, "Moves: %d\n", r.MoveCount)
}

func seatName(name string) string {
	if name == "" {
		return "(open)"
	}
	return name
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}

// eventFields is a loose view of every outbound payload shape
type eventFields struct {
	Status      string  `json:"status"`
	RoomCode    string  `json:"room_code"`
	PlayerColor string  `json:"player_color"`
	Opponent    string  `json:"opponent"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	Promotion   string  `json:"promotion"`
	Player      string  `json:"player"`
	Color       string  `json:"color"`
	Result      string  `json:"result"`
	Winner      *string `json:"winner"`
	Reason      string  `json:"reason"`
	Accepted    bool    `json:"accepted"`
	GameState   string  `json:"game_state"`
	Message     string  `json:"message"`
}

func (o *Output) printEvent(e Event) {
	var f eventFields
	_ = json.Unmarshal(e.Data, &f)

	timestamp := e.Time.Format("15:04:05")
	var line string
	switch e.Event {
	case "connection_established":
		line = "Connected to server"
	case "room_created":
		line = fmt.Sprintf("Room %s created, you play %s. Share the code with your opponent.", f.RoomCode, f.PlayerColor)
	case "room_joined":
		line = fmt.Sprintf("Joined room %s as %s against %s", f.RoomCode, f.PlayerColor, f.Opponent)
	case "opponent_joined":
		line = fmt.Sprintf("%s joined, the game is on", f.Opponent)
	case "chess_move":
		line = fmt.Sprintf("%s (%s) moved %s-%s", f.Player, f.Color, f.From, f.To)
	case "game_ended":
		winner := "none"
		if f.Winner != nil {
			winner = *f.Winner
		}
		line = fmt.Sprintf("Game over: %s, winner %s %s", f.Result, winner, f.Reason)
	case "draw_offered":
		line = "Your opponent offers a draw (accept / decline)"
	case "draw_response":
		if f.Accepted {
			line = "Draw accepted"
		} else {
			line = "Draw declined"
		}
	case "opponent_resigned":
		line = "Your opponent resigned"
	case "player_disconnected":
		line = fmt.Sprintf("%s (%s) disconnected, game is %s", f.Player, f.Color, f.GameState)
	case "error":
		line = "Error: " + f.Message
	default:
		line = fmt.Sprintf("%s: %s", e.Event, string(e.Data))
	}
	fmt.Fprintf(o.w, "[%s] %s\n", timestamp, line)
}
