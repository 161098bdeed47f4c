package matchhub

import (
	"log"

	"tunemate/backend/internal/models"
	"tunemate/backend/internal/realtime"
	"tunemate/backend/internal/storage"
)

// ManagerService is the hub: it tracks connected clients, owns one Session
// per user and routes client commands to the right session.
type ManagerService struct {
	Clients  map[string]Client
	Sessions map[string]*Session

	RegisterCh   chan Client
	UnregisterCh chan Client
	CommandCh    chan models.ClientCommand

	Storage storage.Storage
	Bus     *realtime.Bus
}

func NewManagerService(s storage.Storage, bus *realtime.Bus) *ManagerService {
	return &ManagerService{
		Clients:      make(map[string]Client),
		Sessions:     make(map[string]*Session),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		CommandCh:    make(chan models.ClientCommand, 64),
		Storage:      s,
		Bus:          bus,
	}
}

// Run is the hub's main loop.
func (m *ManagerService) Run() {
	log.Println("Match hub started.")

	for {
		select {
		case client := <-m.RegisterCh:
			m.register(client)

		case client := <-m.UnregisterCh:
			m.unregister(client)

		case cmd := <-m.CommandCh:
			session, ok := m.Sessions[cmd.UserID]
			if !ok {
				continue
			}
			// Store calls inside command handling block; keep the hub loop
			// free for the next client.
			go m.dispatch(session, cmd)
		}
	}
}

func (m *ManagerService) register(client Client) {
	userID := client.GetUserID()

	profile, err := m.Storage.GetProfileByID(userID)
	if err != nil || profile == nil {
		// No profile means matchmaking disabled; drop the connection.
		log.Printf("Rejecting client %s: no profile (%v)", userID, err)
		client.Close()
		return
	}

	if old, ok := m.Clients[userID]; ok {
		m.unregisterClient(userID, old)
	}

	session := NewSession(*profile, m.Storage, m.Bus, client)
	session.Start()
	m.Clients[userID] = client
	m.Sessions[userID] = session
	log.Printf("Client %s connected", userID)
}

func (m *ManagerService) unregister(client Client) {
	userID := client.GetUserID()
	if current, ok := m.Clients[userID]; !ok || current != client {
		return
	}
	m.unregisterClient(userID, client)
}

func (m *ManagerService) unregisterClient(userID string, client Client) {
	if session, ok := m.Sessions[userID]; ok {
		session.Close()
		delete(m.Sessions, userID)
	}
	delete(m.Clients, userID)
	client.Close()
	log.Printf("Client %s disconnected", userID)
}

func (m *ManagerService) dispatch(session *Session, cmd models.ClientCommand) {
	switch cmd.Action {
	case "load_song":
		if cmd.Song == nil {
			return
		}
		session.LoadSong(*cmd.Song)
	case "stop_listening":
		session.StopListening()
	case "open_chat":
		session.OpenChat(cmd.MatchID)
	case "close_chat":
		session.CloseChat()
	case "send_message":
		session.SendMessage(cmd.Content)
	case "remove_match":
		session.RemoveMatch(cmd.MatchID)
	default:
		log.Printf("Unknown action %q from user %s", cmd.Action, cmd.UserID)
	}
}
