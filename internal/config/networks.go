package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Network 描述一条链网络的接入端点。
type Network struct {
	RPCURL     string `yaml:"rpc_url"`
	ScannerURL string `yaml:"scanner_url"`
	ChainID    int64  `yaml:"chain_id"`
}

// Networks 是 YAML 网络定义文件的顶层结构。
type Networks struct {
	Sonic map[string]Network `yaml:"sonic"`
}

// LoadNetworks 解析 YAML 网络定义文件。路径为空时返回内置默认值。
func LoadNetworks(path string) (*Networks, error) {
	if path == "" {
		return defaultNetworks(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取网络定义失败: %w", err)
	}

	var networks Networks
	if err := yaml.Unmarshal(content, &networks); err != nil {
		return nil, fmt.Errorf("解析网络定义失败: %w", err)
	}
	if len(networks.Sonic) == 0 {
		networks.Sonic = defaultNetworks().Sonic
	}
	return &networks, nil
}

// SonicNetwork 返回指定名称的 Sonic 网络定义。
func (n *Networks) SonicNetwork(name string) (Network, error) {
	network, ok := n.Sonic[name]
	if !ok {
		return Network{}, fmt.Errorf("未知的 Sonic 网络: %s", name)
	}
	if network.RPCURL == "" {
		return Network{}, fmt.Errorf("网络 %s 缺少 rpc_url", name)
	}
	return network, nil
}

func defaultNetworks() *Networks {
	return &Networks{
		Sonic: map[string]Network{
			"mainnet": {
				RPCURL:     "https://rpc.soniclabs.com",
				ScannerURL: "https://sonicscan.org",
			},
			"testnet": {
				RPCURL:     "https://rpc.blaze.soniclabs.com",
				ScannerURL: "https://testnet.sonicscan.org",
			},
		},
	}
}
