package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"

	"github.com/pkordes/tripsync/internal/middleware"
)

// wsNotifier implements live.Notifier over the gateway's websocket watch
// endpoint. Each Notify call owns one connection subscribed to one topic;
// the connection redials with backoff until its subscription is cancelled,
// and every (re)connect emits a signal so the subscriber re-fetches any
// changes missed while disconnected.
type wsNotifier struct {
	watchURL string // ws(s) scheme, without query
	identity IdentityProvider
	dialer   *websocket.Dialer
}

func newWSNotifier(baseURL string, identity IdentityProvider) *wsNotifier {
	u := strings.Replace(baseURL, "http", "ws", 1) // http→ws, https→wss
	return &wsNotifier{
		watchURL: u + "/api/watch",
		identity: identity,
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// Notify registers a remote listener for topic. The returned channel
// carries coalesced change signals and closes once the listener is torn
// down for good.
func (n *wsNotifier) Notify(ctx context.Context, topic string) (<-chan struct{}, func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	ch := make(chan struct{}, 1)
	go n.run(ctx, topic, ch)

	var once sync.Once
	stop := func() { once.Do(cancel) }
	return ch, stop, nil
}

// run maintains the connection for one topic until ctx is done.
func (n *wsNotifier) run(ctx context.Context, topic string, ch chan<- struct{}) {
	defer close(ch)

	for ctx.Err() == nil {
		conn, err := n.dial(ctx, topic)
		if err != nil {
			return // ctx done; retry.Do already exhausted otherwise impossible
		}

		// Unblock the read loop when the subscription is cancelled.
		stop := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				conn.Close()
			case <-stop:
			}
		}()

		// A fresh connection may have missed signals: emit one so the
		// subscriber re-fetches. Harmless when nothing changed.
		signal(ch)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
			signal(ch)
		}
		close(stop)
		conn.Close()
	}
}

// dial connects to the watch endpoint, backing off between attempts until
// it succeeds or ctx is done.
func (n *wsNotifier) dial(ctx context.Context, topic string) (*websocket.Conn, error) {
	target := n.watchURL + "?topic=" + url.QueryEscape(topic)
	header := http.Header{middleware.IdentityHeader: []string{n.identity.Current()}}

	var conn *websocket.Conn
	backoff := retry.NewFibonacci(250 * time.Millisecond)
	backoff = retry.WithCappedDuration(10*time.Second, backoff)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, _, err := n.dialer.DialContext(ctx, target, header)
		if err != nil {
			return retry.RetryableError(err)
		}
		conn = c
		return nil
	})
	return conn, err
}

// signal delivers one coalesced change notification.
func signal(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
