package cmd

import (
	"os"

	"github.com/haierkeys/git-light-sync/pkg/fileurl"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// configCandidates 未指定 -c 时按顺序查找的配置文件
var configCandidates = []string{
	"config/config-dev.yaml",
	"config.yaml",
	"config/config.yaml",
}

// resolveConfigFile returns the config file to use, writing the embedded
// default to config/config.yaml when none exists
// resolveConfigFile 返回要使用的配置文件，不存在时写入内置默认配置
func resolveConfigFile(specified string) (string, error) {
	if len(specified) > 0 {
		return specified, nil
	}
	for _, f := range configCandidates {
		if fileurl.IsExist(f) {
			return f, nil
		}
	}

	bootstrapLogger.Warn("config file not found, creating default config")
	path := configCandidates[len(configCandidates)-1]

	if err := fileurl.CreatePath(path, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "config file auto create error")
	}
	if err := os.WriteFile(path, []byte(configDefault), 0644); err != nil {
		return "", errors.Wrap(err, "config file auto create writing error")
	}
	bootstrapLogger.Info("config file auto create successfully", zap.String("path", path))
	return path, nil
}
