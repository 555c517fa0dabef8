// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package logger

import "fmt"

// Logger hands log lines to whoever drains Prints, usually the log page.
// Sending never blocks: when nobody drains the channel and the buffer is
// full, the line is dropped.
type Logger struct {
	Prints chan string
}

func Init() *Logger {
	return &Logger{make(chan string, 100)}
}

func (l *Logger) Print(s string) {
	select {
	case l.Prints <- s:
	default:
	}
}

func (l *Logger) Printf(s string, as ...interface{}) {
	l.Print(fmt.Sprintf(s, as...))
}

func (l *Logger) PrintError(source string, err error) {
	l.Printf("Error(%s) -> %s", source, err.Error())
}
