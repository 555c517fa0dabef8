// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package subsonic

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spezifisch/artgc/bitmap"
	"github.com/spezifisch/artgc/logger"
)

// MAX_ALBUMS is the largest album list the server hands out in one call.
const MAX_ALBUMS = 500

// Connection fetches album covers from a Subsonic server. It does not keep
// any covers itself; the caller decides what to cache.
type Connection struct {
	Username      string
	Password      string
	Host          string
	PlaintextAuth bool

	clientName    string
	clientVersion string

	logger logger.LoggerInterface
}

func Init(logger logger.LoggerInterface) *Connection {
	return &Connection{
		clientName:    "example",
		clientVersion: "1.8.0",

		logger: logger,
	}
}

func (s *Connection) SetClientInfo(name, version string) {
	s.clientName = name
	s.clientVersion = version
}

func defaultQuery(connection *Connection) url.Values {
	query := url.Values{}
	if connection.PlaintextAuth {
		query.Set("p", connection.Password)
	} else {
		token, salt := authToken(connection.Password)
		query.Set("t", token)
		query.Set("s", salt)
	}
	query.Set("u", connection.Username)
	query.Set("v", connection.clientVersion)
	query.Set("c", connection.clientName)
	query.Set("f", "json")

	return query
}

// authToken returns md5(password + salt) and the random salt it used.
func authToken(password string) (string, string) {
	saltBytes := make([]byte, 6)
	if _, err := rand.Read(saltBytes); err != nil {
		panic(err)
	}
	salt := hex.EncodeToString(saltBytes)
	sum := md5.Sum([]byte(password + salt))
	return hex.EncodeToString(sum[:]), salt
}

// GetAlbumList returns the newest albums, at most size of them.
// https://opensubsonic.netlify.app/docs/endpoints/getalbumlist2/
func (connection *Connection) GetAlbumList(size int) ([]Album, error) {
	if size <= 0 || size > MAX_ALBUMS {
		size = MAX_ALBUMS
	}
	query := defaultQuery(connection)
	query.Set("type", "newest")
	query.Set("size", strconv.Itoa(size))
	requestUrl := connection.Host + "/rest/getAlbumList2" + "?" + query.Encode()
	resp, err := connection.GetResponse("GetAlbumList", requestUrl)
	if err != nil {
		return nil, err
	}
	if connection.logger != nil {
		connection.logger.Printf("GetAlbumList: %d albums", len(resp.AlbumList2.Albums))
	}
	return resp.AlbumList2.Albums, nil
}

// GetCoverArt fetches and decodes album art by cover ID. If size is
// positive the server scales the image down to it. GIF, JPEG and PNG
// are understood.
//
// The returned bitmap is not registered anywhere; callers hand it to the
// collector.
func (connection *Connection) GetCoverArt(id string, size int) (*bitmap.Bitmap, error) {
	caller := "GetCoverArt"
	if id == "" {
		return nil, fmt.Errorf("[%s] no ID provided", caller)
	}
	query := defaultQuery(connection)
	query.Set("id", id)
	query.Set("f", "image/png")
	if size > 0 {
		query.Set("size", strconv.Itoa(size))
	}
	res, err := http.Get(connection.Host + "/rest/getCoverArt" + "?" + query.Encode())
	if err != nil {
		return nil, fmt.Errorf("[%s] failed to make GET request: %v", caller, err)
	}

	if res.Body != nil {
		defer res.Body.Close()
	} else {
		return nil, fmt.Errorf("[%s] response body is nil", caller)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("[%s] unexpected status code: %d, status: %s", caller, res.StatusCode, res.Status)
	}

	if len(res.Header["Content-Type"]) == 0 {
		return nil, fmt.Errorf("[%s] unknown image type (no content-type from server)", caller)
	}

	art, err := bitmap.Decode(res.Body, res.Header["Content-Type"][0])
	if err != nil {
		return nil, fmt.Errorf("[%s] %v", caller, err)
	}
	return art, nil
}

func (connection *Connection) GetResponse(caller, requestUrl string) (Response, error) {
	zero := Response{}
	res, err := http.Get(requestUrl)
	if err != nil {
		return zero, fmt.Errorf("[%s] failed to make GET request: %v", caller, err)
	}

	if res.Body != nil {
		defer res.Body.Close()
	} else {
		return zero, fmt.Errorf("[%s] response body is nil", caller)
	}

	if res.StatusCode != http.StatusOK {
		return zero, fmt.Errorf("[%s] unexpected status code: %d, status: %s", caller, res.StatusCode, res.Status)
	}

	responseBody, readErr := io.ReadAll(res.Body)
	if readErr != nil {
		return zero, fmt.Errorf("[%s] failed to read response body: %v", caller, readErr)
	}

	var decodedBody responseWrapper
	err = json.Unmarshal(responseBody, &decodedBody)
	if err != nil {
		return zero, fmt.Errorf("[%s] failed to unmarshal response body: %v", caller, err)
	}

	if decodedBody.Response.Status == "failed" {
		return zero, fmt.Errorf("[%s] server error %d: %s", caller, decodedBody.Response.Error.Code, decodedBody.Response.Error.Message)
	}

	return decodedBody.Response, nil
}
