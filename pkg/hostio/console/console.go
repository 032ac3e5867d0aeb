// Package console implements a raw-mode terminal console a host can
// wire to a hart's ECALL handler for character I/O, in the same
// status-register-plus-polling style as the reference VM's serial TTY:
// an input byte, an output byte, and a status word whose bits record
// whether each is pending. The difference is the transport: instead of
// a TCP control connection, this console talks directly to the
// process's own stdin/stdout, put into raw mode via golang.org/x/term
// so input arrives unbuffered and without local echo.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// Status bits, named after the reference TTY's TTYIn/TTYOut.
const (
	StatusIn = 1 << iota
	StatusOut
)

// ErrDetached indicates the console's stdin has reached EOF (the
// controlling terminal went away) and no more input will ever arrive.
var ErrDetached = errors.New("console: detached")

// Console is a raw-mode terminal console. The zero value is not
// usable; construct one with Open.
type Console struct {
	fd       int
	oldState *term.State
	in       *bufio.Reader
	out      *os.File

	inByte  byte
	outByte byte
	status  uint32
}

// Open puts the process's stdin into raw mode and returns a Console
// reading from stdin and writing to stdout. Close must be called to
// restore the terminal's prior mode.
func Open() (*Console, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("console: stdin is not a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("console: entering raw mode: %w", err)
	}
	return &Console{fd: fd, oldState: oldState, in: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

// Close restores the terminal's original mode.
func (c *Console) Close() error {
	return term.Restore(c.fd, c.oldState)
}

// Poll performs one non-blocking-ish pass: if the output byte is
// pending, it is written; if no input byte is pending, one is read.
// Unlike the reference TTY (which sets an I/O deadline on a socket),
// this implementation relies on the caller only invoking Poll when it
// is prepared to block briefly on a keypress — an emulated guest
// servicing a console ECALL is already waiting for one.
func (c *Console) Poll() (bool, error) {
	if c.status&StatusOut != 0 {
		if _, err := c.out.Write([]byte{c.outByte}); err != nil {
			return false, fmt.Errorf("console: write: %w", err)
		}
		c.status &^= StatusOut
	}
	if c.status&StatusIn == 0 {
		b, err := c.in.ReadByte()
		if err != nil {
			return false, fmt.Errorf("%w: %s", ErrDetached, err.Error())
		}
		c.inByte = b
		c.status |= StatusIn
	}
	return c.status&(StatusIn|StatusOut) != 0, nil
}

// InByte returns the pending input byte and clears the in-pending bit.
// It is the caller's responsibility to have confirmed StatusIn was set
// (e.g. via Poll's return value) before relying on the result.
func (c *Console) InByte() byte {
	c.status &^= StatusIn
	return c.inByte
}

// QueueOutByte marks b as the pending output byte; the next Poll call
// writes it.
func (c *Console) QueueOutByte(b byte) {
	c.outByte = b
	c.status |= StatusOut
}

// Status returns the raw status word (StatusIn | StatusOut bits).
func (c *Console) Status() uint32 { return c.status }
