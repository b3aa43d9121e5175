/* models.go
 * Contains the configuration and server structs plus the request bodies accepted by
 * the HTTP layer
 * Authors: Zachary Bower
 */

package web

import (
	"typerace-api/api/api"
)

// Config holds the configuration for the web server
type Config struct {
	Addr string
	API  *api.API
}

// Server is the HTTP adapter over the API facade. It holds no logic of its own
type Server struct {
	api *api.API
}

type createMatchRequest struct {
	PassageText   string `json:"passage_text"`
	PassageSource string `json:"passage_source"`
}

type joinMatchRequest struct {
	InviteCode string `json:"invite_code"`
}

type submitResultRequest struct {
	Wpm      int     `json:"wpm"`
	Accuracy float64 `json:"accuracy"`
	Errors   int     `json:"errors"`
}

type soloAttemptRequest struct {
	Wpm           int     `json:"wpm"`
	Accuracy      float64 `json:"accuracy"`
	Errors        int     `json:"errors"`
	PassageSource string  `json:"passage_source"`
}
