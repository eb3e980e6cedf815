package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// ICEConfig is the STUN/TURN list handed to every peer in addPeer.
// ServersJSON, when set, replaces the individual fields.
type ICEConfig struct {
	StunEnabled    bool   `mapstructure:"stun_enabled"`
	StunURL        string `mapstructure:"stun_url"`
	TurnEnabled    bool   `mapstructure:"turn_enabled"`
	TurnURL        string `mapstructure:"turn_url"`
	TurnUsername   string `mapstructure:"turn_username"`
	TurnCredential string `mapstructure:"turn_credential"`
	ServersJSON    string `mapstructure:"servers_json"`
}

// ICEServers never returns nil; an empty list means host candidates only.
// Bad entries are logged and left out.
func (c *Config) ICEServers() []webrtc.ICEServer {
	if raw := strings.TrimSpace(c.ICE.ServersJSON); raw != "" {
		servers, err := ParseICEServersJSON(raw)
		if err == nil {
			return servers
		}
		log.Error().Err(err).Str("module", "config").Msg("ICE_SERVERS_JSON ignored")
	}

	servers := make([]webrtc.ICEServer, 0, 2)
	if c.ICE.StunEnabled {
		server := webrtc.ICEServer{URLs: splitCommaSeparated(c.ICE.StunURL)}
		if err := validateICEServer(server); err != nil {
			log.Error().Err(err).Str("module", "config").Msg("STUN server omitted")
		} else {
			servers = append(servers, server)
		}
	}
	if c.ICE.TurnEnabled {
		server := webrtc.ICEServer{
			URLs:       splitCommaSeparated(c.ICE.TurnURL),
			Username:   strings.TrimSpace(c.ICE.TurnUsername),
			Credential: strings.TrimSpace(c.ICE.TurnCredential),
		}
		if err := validateICEServer(server); err != nil {
			log.Error().Err(err).Str("module", "config").Msg("TURN server omitted")
		} else {
			servers = append(servers, server)
		}
	}
	return servers
}

type iceServerJSON struct {
	URLs       stringOrStringSlice `json:"urls"`
	Username   string              `json:"username,omitempty"`
	Credential string              `json:"credential,omitempty"`
}

type stringOrStringSlice []string

func (s *stringOrStringSlice) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*s = []string{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// ParseICEServersJSON accepts the browser RTCIceServer[] shape, where urls
// may be a single string or a list. Only malformed JSON is an error; invalid
// entries are logged and skipped.
func ParseICEServersJSON(raw string) ([]webrtc.ICEServer, error) {
	var servers []iceServerJSON
	if err := json.Unmarshal([]byte(raw), &servers); err != nil {
		return nil, err
	}

	out := make([]webrtc.ICEServer, 0, len(servers))
	for i, server := range servers {
		urls := make([]string, 0, len(server.URLs))
		for _, url := range server.URLs {
			if url = strings.TrimSpace(url); url != "" {
				urls = append(urls, url)
			}
		}

		pcServer := webrtc.ICEServer{
			URLs:     urls,
			Username: strings.TrimSpace(server.Username),
		}
		if strings.TrimSpace(server.Credential) != "" {
			pcServer.Credential = server.Credential
		}
		if err := validateICEServer(pcServer); err != nil {
			log.Error().Err(err).Str("module", "config").Int("index", i).Msg("ice server omitted")
			continue
		}
		out = append(out, pcServer)
	}
	return out, nil
}

func splitCommaSeparated(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func validateICEServer(server webrtc.ICEServer) error {
	if len(server.URLs) == 0 {
		return errors.New("missing urls")
	}

	requiresTurnCreds := false
	for _, url := range server.URLs {
		if !isAllowedICEScheme(url) {
			return fmt.Errorf("unsupported url scheme: %q", url)
		}
		if strings.HasPrefix(url, "turn:") || strings.HasPrefix(url, "turns:") {
			requiresTurnCreds = true
		}
	}

	if requiresTurnCreds {
		if server.Username == "" {
			return errors.New("turn urls require username")
		}
		cred, ok := server.Credential.(string)
		if !ok || strings.TrimSpace(cred) == "" {
			return errors.New("turn urls require credential")
		}
	}
	return nil
}

func isAllowedICEScheme(url string) bool {
	for _, scheme := range []string{"stun:", "stuns:", "turn:", "turns:"} {
		if strings.HasPrefix(url, scheme) {
			return true
		}
	}
	return false
}
