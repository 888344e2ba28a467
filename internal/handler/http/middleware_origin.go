// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/MKhiriev/go-finance-sync/internal/app"
	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/internal/utils"
)

// originPolicy decides which callers may drive the agent. Loopback is always
// allowed. Other browser origins must be configured explicitly.
type originPolicy struct {
	// hosts are the Host header values (without port) the API answers to
	hosts map[string]struct{}
	// origins are configured "scheme://host[:port]" values, lower-cased
	origins map[string]struct{}
	// originHosts feed websocket.AcceptOptions.OriginPatterns
	originHosts []string
}

func newOriginPolicy(listenAddress string, allowed []string) *originPolicy {
	p := &originPolicy{
		hosts:   make(map[string]struct{}),
		origins: make(map[string]struct{}),
	}

	// a non-loopback listen host (LAN address) is a legitimate Host header
	if host, _, err := net.SplitHostPort(listenAddress); err == nil && host != "" && !isUnspecified(host) {
		p.hosts[strings.ToLower(host)] = struct{}{}
	}

	for _, o := range allowed {
		u, err := url.Parse(strings.TrimSpace(o))
		if err != nil || u.Scheme == "" || u.Host == "" {
			continue
		}
		p.origins[strings.ToLower(u.Scheme+"://"+u.Host)] = struct{}{}
		p.originHosts = append(p.originHosts, strings.ToLower(u.Host))
	}

	return p
}

// allowHost guards against DNS rebinding: a page on a foreign name resolved
// to 127.0.0.1 still sends its own name in Host.
func (p *originPolicy) allowHost(hostport string) bool {
	if hostport == "" {
		return true
	}
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	host = strings.ToLower(strings.Trim(host, "[]"))

	if isLoopback(host) {
		return true
	}
	_, ok := p.hosts[host]
	return ok
}

func (p *originPolicy) allowOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		// includes the opaque "null" origin of sandboxed frames and file://
		return false
	}
	if isLoopback(strings.ToLower(u.Hostname())) {
		return true
	}
	_, ok := p.origins[strings.ToLower(u.Scheme+"://"+u.Host)]
	return ok
}

// patterns lists host patterns for the websocket handshake, which runs its
// own Origin check after withLocalOrigin.
func (p *originPolicy) patterns() []string {
	// filepath.Match reads brackets as a class, hence ? for "[" and "]"
	out := []string{"localhost", "localhost:*", "127.0.0.1", "127.0.0.1:*", "?::1?", "?::1?:*"}
	return append(out, p.originHosts...)
}

func isLoopback(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func isUnspecified(host string) bool {
	ip := net.ParseIP(strings.Trim(host, "[]"))
	return ip != nil && ip.IsUnspecified()
}

// withLocalOrigin rejects requests that a web page on another site could
// have sent: a foreign Host header or a foreign Origin. Clients that send no
// Origin (curl, native shells) are not browsers and pass.
func (h *Handler) withLocalOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		if !h.origins.allowHost(r.Host) {
			log.Warn().Str("func", "*Handler.withLocalOrigin").Str("host", r.Host).Msg("request for a foreign host rejected")
			utils.WriteError(w, app.MsgForbiddenOrigin, http.StatusForbidden)
			return
		}

		if origin := r.Header.Get("Origin"); origin != "" && !h.origins.allowOrigin(origin) {
			log.Warn().Str("func", "*Handler.withLocalOrigin").Str("origin", origin).Msg("cross-origin request rejected")
			utils.WriteError(w, app.MsgForbiddenOrigin, http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
