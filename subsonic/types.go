// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package subsonic

import (
	"encoding/json"
	"strconv"
)

type Response struct {
	Status     string    `json:"status"`
	Version    string    `json:"version"`
	Error      Error     `json:"error"`
	AlbumList2 AlbumList `json:"albumList2"`
}

type responseWrapper struct {
	Response Response `json:"subsonic-response"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type AlbumList struct {
	Albums []Album `json:"album"`
}

// Album is the part of an album we need to find its cover.
type Album struct {
	Id         Id     `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	CoverArtId string `json:"coverArt"`
}

// Id accepts both string and numeric ids; servers disagree on which.
type Id string

func (si *Id) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, (*string)(si))
	}
	var i int
	if err := json.Unmarshal(b, &i); err != nil {
		return err
	}
	*si = Id(strconv.Itoa(i))
	return nil
}
