package demo

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture 演示沙箱数据集
type Fixture struct {
	Users    []FixtureUser    `yaml:"users"`
	Projects []FixtureProject `yaml:"projects"`
}

// FixtureUser 预置用户, 密码为明文, 入库前哈希
type FixtureUser struct {
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Email      string `yaml:"email"`
	Role       string `yaml:"role"`
	Restricted bool   `yaml:"restricted"`
}

// FixtureProject 预置项目, 成员和Issue按用户名引用
type FixtureProject struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Members     []string       `yaml:"members"`
	Issues      []FixtureIssue `yaml:"issues"`
}

type FixtureIssue struct {
	Title       string           `yaml:"title"`
	Description string           `yaml:"description"`
	IssueType   string           `yaml:"issue_type"`
	Priority    int8             `yaml:"priority"`
	Status      string           `yaml:"status"`
	Submitter   string           `yaml:"submitter"`
	Assignee    string           `yaml:"assignee"`
	Comments    []FixtureComment `yaml:"comments"`
}

type FixtureComment struct {
	Author  string         `yaml:"author"`
	Text    string         `yaml:"text"`
	Replies []FixtureReply `yaml:"replies"`
}

type FixtureReply struct {
	Author string `yaml:"author"`
	Text   string `yaml:"text"`
}

// LoadFixture 从yaml文件加载演示数据集
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取演示数据失败: %w", err)
	}

	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("解析演示数据失败: %w", err)
	}
	return &fixture, nil
}
