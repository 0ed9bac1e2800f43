package config

// LoadWithEnv exposes load with an injected environment for tests.
var LoadWithEnv = load
