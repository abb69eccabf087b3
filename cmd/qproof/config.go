package main

import (
	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli"

	"github.com/kroma-network/qproof-proxy/internal/config"
)

// loadConfig reads the config file and applies every flag that was set explicitly.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.GlobalString(ConfigFile.Name))
	if err != nil {
		return nil, err
	}

	setString(ctx, LogLevel.Name, &cfg.Log.Level)
	setString(ctx, JsonRpcAddr.Name, &cfg.Server.Addr)
	setInt(ctx, JsonRpcPort.Name, &cfg.Server.Port)

	setString(ctx, EntropySource.Name, &cfg.Entropy.Source)
	setStrings(ctx, DrandURLs.Name, &cfg.Entropy.DrandURLs)
	setString(ctx, DrandChainHash.Name, &cfg.Entropy.DrandChainHash)
	setString(ctx, QRNGURL.Name, &cfg.Entropy.QRNGURL)
	setString(ctx, FixedSeed.Name, &cfg.Entropy.FixedSeed)

	setString(ctx, OptimizerKind.Name, &cfg.Optimizer.Kind)
	setString(ctx, OptimizerAddress.Name, &cfg.Optimizer.Address)
	setStrings(ctx, OptimizerFixedPath.Name, &cfg.Optimizer.FixedPath)
	setString(ctx, OptimizerFailureReason.Name, &cfg.Optimizer.FailureReason)
	setString(ctx, AwsRegion.Name, &cfg.Optimizer.AWS.Region)
	setString(ctx, AwsOptimizerInstanceId.Name, &cfg.Optimizer.AWS.InstanceID)
	setString(ctx, AwsOptimizerUrlSchema.Name, &cfg.Optimizer.AWS.Scheme)
	setInt(ctx, AwsOptimizerPort.Name, &cfg.Optimizer.AWS.Port)

	setString(ctx, OracleURL.Name, &cfg.Oracle.URL)
	setString(ctx, OracleTargetContract.Name, &cfg.Oracle.TargetContract)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, err := logging.LevelFromString(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logging.SetAllLoggers(level)
	return cfg, nil
}

func setString(ctx *cli.Context, name string, target *string) {
	if ctx.GlobalIsSet(name) {
		*target = ctx.GlobalString(name)
	}
}

func setInt(ctx *cli.Context, name string, target *int) {
	if ctx.GlobalIsSet(name) {
		*target = ctx.GlobalInt(name)
	}
}

func setStrings(ctx *cli.Context, name string, target *[]string) {
	if ctx.GlobalIsSet(name) {
		*target = ctx.GlobalStringSlice(name)
	}
}
