package main

import (
	"github.com/urfave/cli"
)

var (
	ConfigFile = cli.StringFlag{
		Name:   "config",
		Usage:  "TOML configuration file; flags override its values",
		EnvVar: "QPROOF_CONFIG",
	}
	LogLevel = cli.StringFlag{
		Name:   "log.level",
		Usage:  "Log level (debug, info, warn, error)",
		EnvVar: "QPROOF_LOG_LEVEL",
	}
	JsonRpcAddr = cli.StringFlag{
		Name:   "rpc.addr",
		Usage:  "JSON-RPC server listening address",
		EnvVar: "QPROOF_RPC_ADDR",
	}
	JsonRpcPort = cli.IntFlag{
		Name:   "rpc.port",
		Usage:  "JSON-RPC server listening port",
		EnvVar: "QPROOF_RPC_PORT",
	}
	EntropySource = cli.StringFlag{
		Name:   "entropy.source",
		Usage:  "Entropy source: drand, qrng or fixed",
		EnvVar: "QPROOF_ENTROPY_SOURCE",
	}
	DrandURLs = cli.StringSliceFlag{
		Name:   "entropy.drand-url",
		Usage:  "drand HTTP endpoint, tried in order",
		EnvVar: "QPROOF_DRAND_URLS",
	}
	DrandChainHash = cli.StringFlag{
		Name:   "entropy.drand-chain-hash",
		Usage:  "Hex encoded drand chain hash to pin",
		EnvVar: "QPROOF_DRAND_CHAIN_HASH",
	}
	QRNGURL = cli.StringFlag{
		Name:   "entropy.qrng-url",
		Usage:  "Quantum random number API url",
		EnvVar: "QPROOF_QRNG_URL",
	}
	FixedSeed = cli.StringFlag{
		Name:   "entropy.fixed-seed",
		Usage:  "Seed returned by the fixed entropy source",
		EnvVar: "QPROOF_FIXED_SEED",
	}
	OptimizerKind = cli.StringFlag{
		Name:   "optimizer.kind",
		Usage:  "Optimization engine: jsonrpc, grpc or fixed",
		EnvVar: "QPROOF_OPTIMIZER_KIND",
	}
	OptimizerAddress = cli.StringFlag{
		Name:   "optimizer.address",
		Usage:  "Optimization engine address (url for jsonrpc, host:port for grpc)",
		EnvVar: "QPROOF_OPTIMIZER_ADDRESS",
	}
	OptimizerFixedPath = cli.StringSliceFlag{
		Name:   "optimizer.fixed-path",
		Usage:  "Path element returned by the fixed optimization engine",
		EnvVar: "QPROOF_OPTIMIZER_FIXED_PATH",
	}
	OptimizerFailureReason = cli.StringFlag{
		Name:   "optimizer.failure-reason",
		Usage:  "Failure reason reported by the fixed optimization engine",
		EnvVar: "QPROOF_OPTIMIZER_FAILURE_REASON",
	}
	AwsRegion = cli.StringFlag{
		Name:   "aws.region",
		EnvVar: "AWS_REGION",
	}
	AwsOptimizerInstanceId = cli.StringFlag{
		Name:   "aws.optimizer-instance-id",
		Usage:  "EC2 instance ID hosting the optimization engine",
		EnvVar: "AWS_OPTIMIZER_INSTANCE_ID",
	}
	AwsOptimizerUrlSchema = cli.StringFlag{
		Name:   "aws.optimizer-url-schema",
		Usage:  "Url schema of a JSON-RPC engine on the EC2 instance",
		EnvVar: "AWS_OPTIMIZER_URL_SCHEMA",
	}
	AwsOptimizerPort = cli.IntFlag{
		Name:   "aws.optimizer-port",
		Usage:  "Port of the engine on the EC2 instance",
		EnvVar: "AWS_OPTIMIZER_PORT",
	}
	OracleURL = cli.StringFlag{
		Name:   "oracle.url",
		Usage:  "Oracle bridge endpoint receiving every commitment; empty disables publishing",
		EnvVar: "QPROOF_ORACLE_URL",
	}
	OracleTargetContract = cli.StringFlag{
		Name:   "oracle.target-contract",
		Usage:  "Contract the oracle bridge submits commitments to",
		EnvVar: "QPROOF_ORACLE_TARGET_CONTRACT",
	}

	Action = cli.StringFlag{
		Name:  "action",
		Usage: "Action label of the request",
		Value: "CREATE_APP",
	}
	Features = cli.StringSliceFlag{
		Name:  "feature",
		Usage: "Feature label, repeatable, in order",
	}
	Path = cli.StringSliceFlag{
		Name:  "path",
		Usage: "Disclosed solution path element, repeatable, in order",
	}
	Seed = cli.StringFlag{
		Name:  "seed",
		Usage: "Disclosed seed",
	}
	Commitment = cli.StringFlag{
		Name:  "commitment",
		Usage: "Commitment to check, 0x followed by 64 hex digits",
	}
	Out = cli.StringFlag{
		Name:  "out",
		Usage: "File to write the configuration to; stdout when empty",
	}
	Listen = cli.StringFlag{
		Name:  "listen",
		Usage: "gRPC listening address of the stand-in optimization engine",
		Value: "localhost:7000",
	}
)

func AllFlags() []cli.Flag {
	return []cli.Flag{
		ConfigFile,
		LogLevel,
		JsonRpcAddr,
		JsonRpcPort,
		EntropySource,
		DrandURLs,
		DrandChainHash,
		QRNGURL,
		FixedSeed,
		OptimizerKind,
		OptimizerAddress,
		OptimizerFixedPath,
		OptimizerFailureReason,
		AwsRegion,
		AwsOptimizerInstanceId,
		AwsOptimizerUrlSchema,
		AwsOptimizerPort,
		OracleURL,
		OracleTargetContract,
	}
}
