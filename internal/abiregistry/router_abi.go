package abiregistry

// smartRouterV3ABI is the subset of the PancakeSwap Smart Router V3 ABI the
// pipeline needs: multicall, the six swap variants, and a couple of
// non-swap calls (refundETH, unwrapWETH9) that legitimately appear inside a
// multicall and must decode without being mistaken for a swap (§4.2 edge
// case: "non-swap inner calls ... are permitted ... and preserved but
// ignored by the Extractor").
const smartRouterV3ABI = `[
	{
		"name": "multicall",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{"name": "data", "type": "bytes[]"}
		],
		"outputs": [
			{"name": "results", "type": "bytes[]"}
		]
	},
	{
		"name": "swapExactTokensForTokens",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{"name": "amountIn", "type": "uint256"},
			{"name": "amountOutMin", "type": "uint256"},
			{"name": "path", "type": "address[]"},
			{"name": "to", "type": "address"}
		],
		"outputs": [
			{"name": "amountOut", "type": "uint256"}
		]
	},
	{
		"name": "swapTokensForExactTokens",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{"name": "amountOut", "type": "uint256"},
			{"name": "amountInMax", "type": "uint256"},
			{"name": "path", "type": "address[]"},
			{"name": "to", "type": "address"}
		],
		"outputs": [
			{"name": "amountIn", "type": "uint256"}
		]
	},
	{
		"name": "exactInputSingle",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{
				"name": "params",
				"type": "tuple",
				"components": [
					{"name": "tokenIn", "type": "address"},
					{"name": "tokenOut", "type": "address"},
					{"name": "fee", "type": "uint24"},
					{"name": "recipient", "type": "address"},
					{"name": "amountIn", "type": "uint256"},
					{"name": "amountOutMinimum", "type": "uint256"},
					{"name": "sqrtPriceLimitX96", "type": "uint160"}
				]
			}
		],
		"outputs": [
			{"name": "amountOut", "type": "uint256"}
		]
	},
	{
		"name": "exactOutputSingle",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{
				"name": "params",
				"type": "tuple",
				"components": [
					{"name": "tokenIn", "type": "address"},
					{"name": "tokenOut", "type": "address"},
					{"name": "fee", "type": "uint24"},
					{"name": "recipient", "type": "address"},
					{"name": "amountOut", "type": "uint256"},
					{"name": "amountInMaximum", "type": "uint256"},
					{"name": "sqrtPriceLimitX96", "type": "uint160"}
				]
			}
		],
		"outputs": [
			{"name": "amountIn", "type": "uint256"}
		]
	},
	{
		"name": "exactInput",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{
				"name": "params",
				"type": "tuple",
				"components": [
					{"name": "path", "type": "bytes"},
					{"name": "recipient", "type": "address"},
					{"name": "amountIn", "type": "uint256"},
					{"name": "amountOutMinimum", "type": "uint256"}
				]
			}
		],
		"outputs": [
			{"name": "amountOut", "type": "uint256"}
		]
	},
	{
		"name": "exactOutput",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{
				"name": "params",
				"type": "tuple",
				"components": [
					{"name": "path", "type": "bytes"},
					{"name": "recipient", "type": "address"},
					{"name": "amountOut", "type": "uint256"},
					{"name": "amountInMaximum", "type": "uint256"}
				]
			}
		],
		"outputs": [
			{"name": "amountIn", "type": "uint256"}
		]
	},
	{
		"name": "refundETH",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [],
		"outputs": []
	},
	{
		"name": "unwrapWETH9",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{"name": "amountMinimum", "type": "uint256"},
			{"name": "recipient", "type": "address"}
		],
		"outputs": []
	}
]`

// erc20ABI is the minimal ERC-20 surface the Trade Extractor and ERC-20
// Helpers need: the Transfer event and the read-only metadata/balance calls.
const erc20ABI = `[
	{
		"name": "Transfer",
		"type": "event",
		"anonymous": false,
		"inputs": [
			{"name": "from", "type": "address", "indexed": true},
			{"name": "to", "type": "address", "indexed": true},
			{"name": "value", "type": "uint256", "indexed": false}
		]
	},
	{
		"name": "decimals",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "uint8"}]
	},
	{
		"name": "symbol",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "string"}]
	},
	{
		"name": "balanceOf",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "account", "type": "address"}],
		"outputs": [{"name": "", "type": "uint256"}]
	}
]`
