package main

import (
	"bufio"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wfunc/fishduel/models"
	"github.com/wfunc/fishduel/network"
)

var (
	addr = flag.String("addr", "localhost:3000", "game server host:port")
	name = flag.String("name", "", "username")
	join = flag.String("join", "", "room code to join; empty creates a room")
)

// roomCode is learned from roomCreated or gameStart.
type roomCode struct {
	mutex sync.Mutex
	code  string
}

func (r *roomCode) set(code string) {
	r.mutex.Lock()
	r.code = code
	r.mutex.Unlock()
}

func (r *roomCode) get() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.code
}

// send encodes an event envelope and writes it as a text frame.
func send(c *websocket.Conn, event string, payload interface{}) error {
	data, err := network.Encode(event, payload)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, data)
}

func printEvent(packet *network.Packet, room *roomCode) {
	switch packet.Event {
	case network.EventRoomCreated:
		var code string
		if err := packet.Bind(&code); err == nil {
			room.set(code)
			log.Printf("<- room created: %s (share this code)", code)
		}
	case network.EventGameStart:
		var snap models.RoomSnapshot
		if err := packet.Bind(&snap); err == nil {
			room.set(snap.Code)
			log.Printf("<- game start in %s with %d players, %d fish", snap.Code, len(snap.Players), len(snap.Fishes))
		}
	case network.EventJoinError:
		var msg string
		packet.Bind(&msg)
		log.Printf("<- join error: %s", msg)
	default:
		log.Printf("<- %s %s", packet.Event, string(packet.Data))
	}
}

func main() {
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	room := &roomCode{}
	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			packet, err := network.Decode(message)
			if err != nil {
				log.Printf("Received invalid frame: %v", err)
				continue
			}
			printEvent(packet, room)
		}
	}()

	if *join != "" {
		err = send(c, network.EventJoinRoom, network.JoinRoomRequest{RoomCode: *join, Username: *name})
	} else {
		err = send(c, network.EventCreateRoom, *name)
	}
	if err != nil {
		log.Println("Write error:", err)
		return
	}

	log.Println("Type 'left', 'right' or 'fish' and press Enter to play.")

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
		close(lines)
	}()

	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		case text, ok := <-lines:
			if !ok {
				return
			}
			code := room.get()
			switch text {
			case network.DirectionLeft, network.DirectionRight:
				err = send(c, network.EventMoveBoat, network.MoveBoatRequest{RoomCode: code, Direction: text})
			case "fish":
				err = send(c, network.EventStartFishing, code)
			case "":
				continue
			default:
				log.Printf("unknown command %q", text)
				continue
			}
			if err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}
