package api

import (
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
	"github.com/jun-zaga/RobotWebControl/pkg/transport"
)

// startConsole serves the console routes on a loopback port and returns
// the control websocket URL.
func startConsole(t *testing.T) (*hubFixture, string) {
	t.Helper()
	f := newHubFixture(t)
	logger := customlog.Discard()
	app := fiber.New(FiberConfig("console-test", logger))
	RegisterConsoleRoutes(app, f.settings, f.hub, nil, logger)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = app.Shutdown()
	})
	return f, "ws://" + ln.Addr().String() + "/ws/control"
}

func readState(t *testing.T, conn *websocket.Conn) SessionState {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var st SessionState
	require.NoError(t, conn.ReadJSON(&st))
	return st
}

func TestControlWebSocketSession(t *testing.T) {
	f, url := startConsole(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	st := readState(t, conn)
	assert.Equal(t, "state", st.Type)
	assert.NotEmpty(t, st.SessionID)
	assert.Equal(t, "l=0.00 r=0.00", st.Joystick.Readout)
	assert.Equal(t, 1, f.hub.Count())

	// Binary frames are ignored without an answer.
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte(`{"type":"stop"}`)))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"jump"}`)))
	st = readState(t, conn)
	assert.Contains(t, st.Error, "unknown event type")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"pointerdown","pointerId":1,"clientX":200,"clientY":133,`+rect+`}`)))
	st = readState(t, conn)
	assert.Empty(t, st.Error)
	assert.True(t, st.Joystick.Active)
	assert.Equal(t, 1, f.live.count(transport.EndpointDrive))

	// Dropping the socket mid-drag must stop the robot exactly once.
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return f.hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)

	var beacons, posts int
	for _, c := range f.live.all() {
		if c.endpoint != transport.EndpointStop {
			continue
		}
		if c.beacon {
			beacons++
			assert.Equal(t, transport.StopPayload, c.body)
		} else {
			posts++
		}
	}
	assert.Equal(t, 1, beacons)
	assert.Equal(t, 0, posts, "the ignored binary stop must not reach the robot")
	assert.Empty(t, f.mock.all())
}

func TestControlWebSocketMockQuery(t *testing.T) {
	f, url := startConsole(t)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?mock=1", nil)
	require.NoError(t, err)
	st := readState(t, conn)
	assert.Equal(t, "l=0.00 r=0.00 [MOCK]", st.Joystick.Readout)
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return f.hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, f.mock.count(transport.EndpointStop))
	assert.Empty(t, f.live.all())
}
