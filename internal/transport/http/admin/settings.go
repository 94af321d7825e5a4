package admin

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/corray333/backend-labs/storefront/internal/config"
	"github.com/corray333/backend-labs/storefront/internal/transport/http/response"
)

// Settings tells the shop owner where confirmed orders are announced.
// Credentials and form ids in the target are masked.
type Settings struct {
	Channel string `json:"channel"`
	Target  string `json:"target"`
}

func NewSettings(cfg *config.Config) Settings {
	s := Settings{Channel: cfg.Notification.Channel}

	switch cfg.Notification.Channel {
	case config.ChannelWebhook:
		s.Target = maskURL(cfg.Notification.Webhook.URL, true)
	case config.ChannelAMQP:
		s.Target = fmt.Sprintf("%s (queue %s)", maskURL(cfg.RabbitMQ.URL, false), cfg.RabbitMQ.NotificationQueue)
	case config.ChannelKafka:
		s.Target = fmt.Sprintf("%s (topic %s)", strings.Join(cfg.Kafka.Brokers, ","), cfg.Kafka.Topic)
	}

	return s
}

// maskURL drops user info and query. With maskPath the last path segment,
// which form relays use as the form key, keeps only its first two characters.
func maskURL(raw string, maskPath bool) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "****"
	}

	path := strings.TrimSuffix(u.Path, "/")
	if maskPath {
		if i := strings.LastIndex(path, "/"); i >= 0 && i < len(path)-1 {
			last := path[i+1:]
			if len(last) > 2 {
				last = last[:2]
			}
			path = path[:i+1] + last + "****"
		}
	}

	return u.Scheme + "://" + u.Host + path
}

func GetSettings(w http.ResponseWriter, r *http.Request, settings Settings) {
	response.JSON(w, r, http.StatusOK, settings)
}
