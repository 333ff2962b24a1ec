package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	infocmd "github.com/hxnx/jukebox/internal/features/botinfo/commands"
	musiccmd "github.com/hxnx/jukebox/internal/features/music/commands"
	musiclisteners "github.com/hxnx/jukebox/internal/features/music/listeners"
	pingcmd "github.com/hxnx/jukebox/internal/features/ping/commands"
	pinglisteners "github.com/hxnx/jukebox/internal/features/ping/listeners"
	shared "github.com/hxnx/jukebox/internal/features/shared"
	"github.com/hxnx/jukebox/internal/logging"
	"github.com/sirupsen/logrus"
)

const defaultCommandTimeout = 60 * time.Second

type Command struct {
	Name        string
	Usage       string
	Description string
	// Bind returns the handler for the shard session that received the message.
	Bind func(s *discordgo.Session) shared.Handler
}

type Options struct {
	Prefix         string
	CommandTimeout time.Duration
	AutoLeaveDelay time.Duration
}

// Dispatcher decodes prefix commands and routes them to the music handlers.
type Dispatcher struct {
	prefix     string
	timeout    time.Duration
	announcer  *musiclisteners.Announcer
	autoLeave  *musiclisteners.AutoLeave
	components *musiclisteners.ComponentRouter

	commands map[string]Command
	order    []string
}

func New(handlers *musiccmd.Handlers, announcer *musiclisteners.Announcer, opts Options) *Dispatcher {
	if opts.Prefix == "" {
		opts.Prefix = "!"
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = defaultCommandTimeout
	}

	d := &Dispatcher{
		prefix:     opts.Prefix,
		timeout:    opts.CommandTimeout,
		announcer:  announcer,
		autoLeave:  musiclisteners.NewAutoLeave(handlers.Registry, announcer, opts.AutoLeaveDelay),
		components: musiclisteners.NewComponentRouter(handlers),
		commands:   make(map[string]Command),
	}

	d.Register(Command{Name: "play", Usage: "play <link or search>", Description: "Play a YouTube/Spotify link or the top search result", Bind: static(handlers.Play)})
	d.Register(Command{Name: "join", Usage: "join", Description: "Join your voice channel", Bind: static(handlers.Join)})
	d.Register(Command{Name: "skip", Usage: "skip", Description: "Skip the current track", Bind: static(handlers.Skip)})
	d.Register(Command{Name: "pause", Usage: "pause", Description: "Pause playback", Bind: static(handlers.Pause)})
	d.Register(Command{Name: "resume", Usage: "resume", Description: "Resume playback", Bind: static(handlers.Resume)})
	d.Register(Command{Name: "stop", Usage: "stop", Description: "Stop playback, clear the queue and leave", Bind: static(handlers.Stop)})
	d.Register(Command{Name: "queue", Usage: "queue [page]", Description: "Show the queue", Bind: static(handlers.Queue)})
	d.Register(Command{Name: "clear", Usage: "clear", Description: "Clear the queue", Bind: static(handlers.Clear)})
	d.Register(Command{Name: "delete", Usage: "delete <position>", Description: "Remove a track from the queue", Bind: static(handlers.Delete)})
	d.Register(Command{Name: "current", Usage: "current", Description: "Show the track that is playing", Bind: static(handlers.Current)})
	d.Register(Command{Name: "history", Usage: "history", Description: "Show recently played tracks", Bind: static(handlers.ShowHistory)})
	d.Register(Command{Name: "ping", Usage: "ping", Description: "Show latency", Bind: pingcmd.Ping})
	d.Register(Command{Name: "info", Usage: "info", Description: "Show bot statistics", Bind: func(s *discordgo.Session) shared.Handler {
		return infocmd.Info(s, handlers.Registry)
	}})
	d.Register(Command{Name: "help", Usage: "help", Description: "List commands", Bind: static(d.help)})
	return d
}

func static(h shared.Handler) func(*discordgo.Session) shared.Handler {
	return func(*discordgo.Session) shared.Handler { return h }
}

func (d *Dispatcher) Register(cmd Command) {
	if _, exists := d.commands[cmd.Name]; !exists {
		d.order = append(d.order, cmd.Name)
	}
	d.commands[cmd.Name] = cmd
}

// Dispatch runs the named command. It reports false for unknown commands.
func (d *Dispatcher) Dispatch(ctx context.Context, s *discordgo.Session, name string, req shared.Request) (shared.Reply, bool) {
	cmd, ok := d.commands[name]
	if !ok {
		return shared.Reply{}, false
	}

	d.announcer.Remember(req.GuildID, req.ChannelID)

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	reply := cmd.Bind(s)(ctx, req)
	logging.Guild(req.GuildID).WithFields(logrus.Fields{
		"command":  name,
		"user":     req.AuthorID,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("command: handled")
	return reply, true
}

func (d *Dispatcher) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if s == nil || m == nil || m.Author == nil {
		return
	}
	if m.Author.Bot || m.GuildID == "" {
		return
	}

	name, args, ok := musiclisteners.ParseCommand(d.prefix, m.Content)
	if !ok {
		return
	}

	req := musiclisteners.RequestFromMessage(s.State, m, args)
	reply, ok := d.Dispatch(context.Background(), s, name, req)
	if !ok {
		return
	}
	shared.Send(s, m.ChannelID, reply)
}

func (d *Dispatcher) help(context.Context, shared.Request) shared.Reply {
	lines := make([]string, 0, len(d.order))
	for _, name := range d.order {
		cmd := d.commands[name]
		lines = append(lines, fmt.Sprintf("`%s%s` %s", d.prefix, cmd.Usage, cmd.Description))
	}
	return shared.Reply{Embed: &discordgo.MessageEmbed{
		Title:       "Commands",
		Description: strings.Join(lines, "\n"),
		Color:       shared.AccentColor,
	}}
}

func (d *Dispatcher) AddHandlers(s *discordgo.Session) {
	s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		d.HandleMessage(s, m)
	})

	s.AddHandler(func(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
		d.autoLeave.HandleVoiceStateUpdate(s, vs)
	})

	s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionMessageComponent:
			if pinglisteners.RoutePingComponent(s, i) {
				return
			}
			if d.components.RouteMusicComponent(s, i) {
				return
			}
		default:
			return
		}
	})
}
