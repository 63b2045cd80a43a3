package commanddomain

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Command names as registered with the chat platform.
const (
	NameGreet    = "test"
	NameBalances = "balances"
	NameHistory  = "history"
	NameRegister = "register"
)

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 50
)

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrInvalidArgument = errors.New("invalid command argument")
)

// Command is a parsed slash command. The set is closed: only the types in
// this package implement it.
type Command interface {
	command()
}

// Greet answers with the invoker's display name.
type Greet struct{}

// Balances lists every account.
type Balances struct{}

// History lists the invoker's most recent ledger entries.
type History struct {
	Limit int
}

// Register links the invoker to a new participant.
type Register struct {
	DisplayName string
}

func (Greet) command()    {}
func (Balances) command() {}
func (History) command()  {}
func (Register) command() {}

// Parser builds a Command from invocation arguments.
type Parser func(args map[string]string) (Command, error)

// Dispatcher maps command names to parsers. It is built once and shared.
type Dispatcher struct {
	parsers map[string]Parser
}

// NewDispatcher registers every known command.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		parsers: map[string]Parser{
			NameGreet:    func(map[string]string) (Command, error) { return Greet{}, nil },
			NameBalances: func(map[string]string) (Command, error) { return Balances{}, nil },
			NameHistory:  parseHistory,
			NameRegister: parseRegister,
		},
	}
}

// Parse resolves name and its arguments into a Command.
func (d *Dispatcher) Parse(name string, args map[string]string) (Command, error) {
	parse, ok := d.parsers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return parse(args)
}

// Names lists the registered command names in order.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.parsers))
	for name := range d.parsers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func parseHistory(args map[string]string) (Command, error) {
	raw, ok := args["limit"]
	if !ok || strings.TrimSpace(raw) == "" {
		return History{Limit: DefaultHistoryLimit}, nil
	}
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit < 1 || limit > MaxHistoryLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidArgument, MaxHistoryLimit)
	}
	return History{Limit: limit}, nil
}

func parseRegister(args map[string]string) (Command, error) {
	name := strings.TrimSpace(args["name"])
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	return Register{DisplayName: name}, nil
}
