// Copyright 2019 dfuse Platform Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dexstream-io/dexstream"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from a YAML file.
type Config struct {
	Server      Server    `yaml:"server"`
	Stream      Stream    `yaml:"stream"`
	Filters     Filters   `yaml:"filters"`
	TradeFilter string    `yaml:"trade_filter"`
	Reconnect   Reconnect `yaml:"reconnect"`
	ReportEvery Duration  `yaml:"report_every"`
}

// Duration accepts both bare nanosecond integers and strings in Go duration
// syntax ("500ms", "1m30s").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	switch value := raw.(type) {
	case int:
		*d = Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration value %v", raw)
	}
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Server struct {
	Address       string `yaml:"address"`
	Authorization string `yaml:"authorization"`
	Insecure      bool   `yaml:"insecure"`
}

type Stream struct {
	Type string `yaml:"type"`
}

// Filters are forwarded verbatim to the feed, addresses in base58. The
// upstream service names the pools key "pool", singular.
type Filters struct {
	Programs []string `yaml:"programs"`
	Pool     []string `yaml:"pool"`
	Tokens   []string `yaml:"tokens"`
	Traders  []string `yaml:"traders"`
	Signers  []string `yaml:"signers"`
}

type Reconnect struct {
	InitialDelay Duration `yaml:"initial_delay"`
	MaxDelay     Duration `yaml:"max_delay"`
}

func Default() Config {
	return Config{
		Stream:      Stream{Type: dexstream.StreamTypeDexTrades.String()},
		TradeFilter: string(dexstream.TradeFilterAll),
		Reconnect: Reconnect{
			InitialDelay: Duration(dexstream.DefaultReconnectPolicy.InitialDelay),
			MaxDelay:     Duration(dexstream.DefaultReconnectPolicy.MaxDelay),
		},
		ReportEvery: Duration(30 * time.Second),
	}
}

// Load reads and validates the configuration file. A loading or validation
// error at startup is fatal to the process; on reload the caller keeps
// running with its previous configuration instead.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if _, err := dexstream.ParseStreamType(c.Stream.Type); err != nil {
		return fmt.Errorf("stream.type: %w", err)
	}
	if _, err := dexstream.ParseTradeFilter(c.TradeFilter); err != nil {
		return fmt.Errorf("trade_filter: %w", err)
	}
	if c.Reconnect.InitialDelay < 0 || c.Reconnect.MaxDelay < 0 {
		return fmt.Errorf("reconnect delays cannot be negative")
	}
	return nil
}

// Request converts the validated configuration into a subscription request,
// decoding the base58 filter addresses.
func (c Config) Request() (*dexstream.SubscriptionRequest, error) {
	streamType, err := dexstream.ParseStreamType(c.Stream.Type)
	if err != nil {
		return nil, err
	}
	tradeFilter, err := dexstream.ParseTradeFilter(c.TradeFilter)
	if err != nil {
		return nil, err
	}

	var options []dexstream.RequestOption
	for _, group := range []struct {
		name   string
		values []string
		option func(...dexstream.Address) dexstream.RequestOption
	}{
		{"programs", c.Filters.Programs, dexstream.WithPrograms},
		{"pool", c.Filters.Pool, dexstream.WithPools},
		{"tokens", c.Filters.Tokens, dexstream.WithTokens},
		{"traders", c.Filters.Traders, dexstream.WithTraders},
		{"signers", c.Filters.Signers, dexstream.WithSigners},
	} {
		if len(group.values) == 0 {
			continue
		}
		addrs, err := decodeAddresses(group.values)
		if err != nil {
			return nil, fmt.Errorf("filters.%s: %w", group.name, err)
		}
		options = append(options, group.option(addrs...))
	}
	options = append(options, dexstream.WithTradeFilter(tradeFilter))

	return dexstream.NewSubscriptionRequest(streamType, options...)
}

func (c Config) ReconnectPolicy() dexstream.ReconnectPolicy {
	return dexstream.ReconnectPolicy{
		InitialDelay: c.Reconnect.InitialDelay.Std(),
		MaxDelay:     c.Reconnect.MaxDelay.Std(),
	}
}

func decodeAddresses(in []string) (out []dexstream.Address, err error) {
	for _, raw := range in {
		if raw == "" {
			continue
		}
		addr, err := dexstream.AddressFromBase58(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}
