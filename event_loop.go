// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"time"

	"github.com/spf13/viper"
)

func (ui *Ui) runEventLoops() {
	go ui.guiEventLoop()
}

// handle ui updates
func (ui *Ui) guiEventLoop() {
	// periodic collection passes, disabled with gc.interval = 0
	interval := viper.GetDuration("gc.interval")
	collectTimer := time.NewTicker(time.Hour)
	if interval > 0 {
		collectTimer.Reset(interval)
	} else {
		collectTimer.Stop()
	}
	defer collectTimer.Stop()

	for {
		select {
		case <-collectTimer.C:
			ui.app.QueueUpdateDraw(func() {
				ui.collect("timer")
			})

		case msg := <-ui.logger.Prints:
			// handle log page output
			ui.logPage.Print(msg)
		}
	}
}
