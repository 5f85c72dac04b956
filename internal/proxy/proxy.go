// Package proxy пробрасывает запросы браузера к внешнему POS API без
// изменений, обходя CORS за счёт одинакового origin.
package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// hopHeaders не переживают один HTTP-переход и вырезаются в обе стороны.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Proxy форвардит метод, путь, query, заголовки и тело запроса на
// настроенный upstream и возвращает статус, заголовки и тело ответа
// как есть. Сбой транспорта превращается в 500 с JSON-телом ошибки.
type Proxy struct {
	upstream   string
	httpClient *http.Client
	logger     *zap.Logger
}

// New создаёт прокси для указанного базового URL внешнего API.
func New(upstream string, logger *zap.Logger) *Proxy {
	return &Proxy{
		upstream:   strings.TrimRight(upstream, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// ServeHTTP ожидает, что префикс маршрута уже срезан (http.StripPrefix).
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	url := p.upstream + r.URL.Path
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, url, r.Body)
	if err != nil {
		p.writeError(w, err)
		return
	}

	req.Header = r.Header.Clone()
	req.Header.Del("Host")
	for _, h := range hopHeaders {
		req.Header.Del(h)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error("proxy request failed",
			zap.String("method", r.Method),
			zap.String("url", url),
			zap.Error(err),
		)
		p.writeError(w, err)
		return
	}
	defer resp.Body.Close()

	header := w.Header()
	for k, vv := range resp.Header {
		for _, v := range vv {
			header.Add(k, v)
		}
	}
	for _, h := range hopHeaders {
		header.Del(h)
	}

	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		p.logger.Error("proxy response copy failed", zap.Error(err))
	}
}

func (p *Proxy) writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
