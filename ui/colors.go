package ui

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"
)

// DefaultColors queries the controlling terminal for its default
// foreground and background via OSC 10/11, falling back to white on
// black when the terminal does not answer.
func DefaultColors() (tcell.Color, tcell.Color) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return tcell.ColorWhite, tcell.ColorBlack
	}
	defer tty.Close()

	oldState, err := term.MakeRaw(int(tty.Fd()))
	if err != nil {
		return tcell.ColorWhite, tcell.ColorBlack
	}
	defer term.Restore(int(tty.Fd()), oldState)

	fg, err := queryOSCColor(tty, 10)
	if err != nil {
		fg = tcell.ColorWhite
	}
	bg, err := queryOSCColor(tty, 11)
	if err != nil {
		bg = tcell.ColorBlack
	}
	return fg, bg
}

func queryOSCColor(tty *os.File, code int) (tcell.Color, error) {
	if _, err := fmt.Fprintf(tty, "\x1b]%d;?\a", code); err != nil {
		return tcell.ColorDefault, err
	}
	resp := make([]byte, 0, 64)
	buf := make([]byte, 1)
	if err := tty.SetReadDeadline(time.Now().Add(500 * time.Millisecond)); err != nil {
		return tcell.ColorDefault, err
	}
	for {
		n, err := tty.Read(buf)
		if err != nil {
			return tcell.ColorDefault, fmt.Errorf("read reply: %w", err)
		}
		resp = append(resp, buf[:n]...)
		if buf[0] == '\a' {
			break
		}
	}

	pattern := fmt.Sprintf(`\x1b\]%d;rgb:([0-9A-Fa-f]{4})/([0-9A-Fa-f]{4})/([0-9A-Fa-f]{4})`, code)
	m := regexp.MustCompile(pattern).FindStringSubmatch(string(resp))
	if len(m) != 4 {
		return tcell.ColorDefault, fmt.Errorf("unexpected reply: %q", resp)
	}
	hex2int := func(s string) int32 {
		v, _ := strconv.ParseInt(s, 16, 32)
		return int32(v)
	}
	return tcell.NewRGBColor(hex2int(m[1]), hex2int(m[2]), hex2int(m[3])), nil
}
