package common

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Options indexes the options of a slash subcommand by name
type Options map[string]*discordgo.ApplicationCommandInteractionDataOption

// SubcommandOptions returns the subcommand name and its options
func SubcommandOptions(i *discordgo.InteractionCreate) (string, Options) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return "", Options{}
	}
	sub := data.Options[0]
	return sub.Name, NewOptions(sub.Options)
}

// NewOptions indexes options by name
func NewOptions(options []*discordgo.ApplicationCommandInteractionDataOption) Options {
	indexed := make(Options, len(options))
	for _, opt := range options {
		indexed[opt.Name] = opt
	}
	return indexed
}

// Int returns an integer option, or def when it is absent
func (o Options) Int(name string, def int64) int64 {
	if opt, ok := o[name]; ok {
		return opt.IntValue()
	}
	return def
}

// Float returns a number option, or def when it is absent
func (o Options) Float(name string, def float64) float64 {
	if opt, ok := o[name]; ok {
		return opt.FloatValue()
	}
	return def
}

// String returns a string option, or def when it is absent
func (o Options) String(name, def string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return def
}

// UserID returns the id of a user option, or 0 when it is absent
func (o Options) UserID(name string) int64 {
	opt, ok := o[name]
	if !ok {
		return 0
	}
	id, err := ParseID(opt.Value.(string))
	if err != nil {
		return 0
	}
	return id
}

// ChannelID returns the id of a channel option, or 0 when it is absent
func (o Options) ChannelID(name string) int64 {
	opt, ok := o[name]
	if !ok {
		return 0
	}
	id, err := ParseID(opt.Value.(string))
	if err != nil {
		return 0
	}
	return id
}

// Time parses a date option in DateLayout, returning def when it is absent
func (o Options) Time(name string, def time.Time) (time.Time, error) {
	opt, ok := o[name]
	if !ok {
		return def, nil
	}
	t, err := time.ParseInLocation(DateLayout, opt.StringValue(), time.UTC)
	if err != nil {
		return time.Time{}, NewInvalidInput("Dates must look like " + DateLayout + " (UTC)")
	}
	return t, nil
}
