package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/zipx/internal/job"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgEntriesListed MsgKind = iota
	MsgStarted
	MsgSessionEvent
	MsgRunFinished
	MsgSettled
)

type entriesListed struct {
	files []string
	err   error
}

type started struct {
	run *job.Run
	err error
}

// entriesListedMsg is the constructor for [MsgEntriesListed]
func entriesListedMsg(files []string, err error) Msg {
	return Msg{kind: MsgEntriesListed, data: entriesListed{files, err}}
}

// startedMsg is the constructor for [MsgStarted]
func startedMsg(run *job.Run, err error) Msg {
	return Msg{kind: MsgStarted, data: started{run, err}}
}

// sessionEventMsg is the constructor for [MsgSessionEvent]
func sessionEventMsg(ev job.Event) Msg {
	return Msg{kind: MsgSessionEvent, data: ev}
}

// runFinishedMsg is the constructor for [MsgRunFinished]
func runFinishedMsg(runID uint64) Msg {
	return Msg{kind: MsgRunFinished, data: runID}
}

// settledMsg is the constructor for [MsgSettled]
func settledMsg(runID uint64) Msg {
	return Msg{kind: MsgSettled, data: runID}
}
