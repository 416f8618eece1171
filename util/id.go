package util

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
	nodeErr  error
)

// InitSnowflake 指定机器号，多实例部署时每个实例不同
func InitSnowflake(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("初始化雪花算法节点失败: %w", err)
	}
	nodeOnce.Do(func() {})
	node = n
	return nil
}

func getNode() (*snowflake.Node, error) {
	nodeOnce.Do(func() {
		node, nodeErr = snowflake.NewNode(1)
	})
	return node, nodeErr
}

// GenerateStringID 生成字符串形式的雪花ID
func GenerateStringID() (string, error) {
	n, err := getNode()
	if err != nil {
		return "", err
	}
	if n == nil {
		return "", fmt.Errorf("雪花算法节点未初始化")
	}
	return n.Generate().String(), nil
}
