// Package robot provides the default host for the interpreter: a scripted
// simulator that echoes commands, serves sensor readings from configured
// feeds and reads integers from an input stream.
package robot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"robo-lang/internal/token"
	"strconv"

	mapset "github.com/deckarep/golang-set"
)

var (
	ErrUnknownCommand  = errors.New("unknown robot command")
	ErrUnknownPosition = errors.New("unknown sensor position")
	ErrNoInput         = errors.New("no more integer input")
)

// DefaultReading is what a sensor reports when no feed is configured.
const DefaultReading = "none"

var (
	commands  = newSet(token.Commands)
	positions = newSet(token.SensorPositions)
)

func newSet(items []string) mapset.Set {
	s := mapset.NewSet()
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// IsCommand reports whether name is a robot command.
func IsCommand(name string) bool {
	return commands.Contains(name)
}

// IsPosition reports whether name is a sensor position.
func IsPosition(name string) bool {
	return positions.Contains(name)
}

// Simulator is a scripted robot. It is not safe for concurrent use.
type Simulator struct {
	out  io.Writer
	echo bool

	defaultReading string
	feeds          map[string][]string

	input *bufio.Scanner
	trace []string
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithEcho turns the "[ROBOT CMD] name()" echo on or off.
func WithEcho(on bool) Option {
	return func(s *Simulator) { s.echo = on }
}

// WithDefaultReading sets the reading of positions without a feed.
func WithDefaultReading(reading string) Option {
	return func(s *Simulator) { s.defaultReading = reading }
}

// WithSensorFeed queues readings for a position. They are consumed in
// order; the last one repeats once the queue is drained.
func WithSensorFeed(position string, readings ...string) Option {
	return func(s *Simulator) {
		if len(readings) > 0 {
			s.feeds[position] = append(s.feeds[position], readings...)
		}
	}
}

// WithInput sets the source for Scan(). Integers are whitespace-separated.
func WithInput(r io.Reader) Option {
	return func(s *Simulator) {
		s.input = bufio.NewScanner(r)
		s.input.Split(bufio.ScanWords)
	}
}

// New creates a simulator that echoes commands to out.
func New(out io.Writer, opts ...Option) *Simulator {
	s := &Simulator{
		out:            out,
		echo:           true,
		defaultReading: DefaultReading,
		feeds:          make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch performs a command: it is recorded in the trace and, when echo
// is on, written to the output.
func (s *Simulator) Dispatch(command string) error {
	if !IsCommand(command) {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
	s.trace = append(s.trace, command)
	if s.echo {
		fmt.Fprintf(s.out, "[ROBOT CMD] %s()\n", command)
	}
	return nil
}

// ReadSensor returns the next reading for position.
func (s *Simulator) ReadSensor(position string) (string, error) {
	if !IsPosition(position) {
		return "", fmt.Errorf("%w: %q", ErrUnknownPosition, position)
	}
	feed := s.feeds[position]
	switch len(feed) {
	case 0:
		return s.defaultReading, nil
	case 1:
		return feed[0], nil
	default:
		s.feeds[position] = feed[1:]
		return feed[0], nil
	}
}

// ReadInt reads the next integer from the input.
func (s *Simulator) ReadInt() (int64, error) {
	if s.input == nil || !s.input.Scan() {
		if s.input != nil && s.input.Err() != nil {
			return 0, s.input.Err()
		}
		return 0, ErrNoInput
	}
	word := s.input.Text()
	n, err := strconv.ParseInt(word, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", word, err)
	}
	return n, nil
}

// Trace returns the commands dispatched so far, in order.
func (s *Simulator) Trace() []string {
	return append([]string(nil), s.trace...)
}
