package main

// Canned responses served when LMCHAT_MOCK=1.
const mockGenerateBody = `{
  "id": "chatcmpl-mock",
  "object": "chat.completion",
  "created": 1711115037,
  "model": "mock-model",
  "choices": [
    {
      "index": 0,
      "message": {"role": "assistant", "content": "Hello from the mock model."},
      "logprobs": null,
      "finish_reason": "stop"
    }
  ],
  "usage": {"prompt_tokens": 12, "completion_tokens": 6, "total_tokens": 18}
}`

const mockStreamBody = "data: {\"id\":\"chatcmpl-mock\",\"object\":\"chat.completion.chunk\",\"created\":1711115037,\"model\":\"mock-model\",\"choices\":[{\"index\":0,\"delta\":{\"role\":\"assistant\",\"content\":\"\"},\"finish_reason\":null}]}\n\n" +
	"data: {\"id\":\"chatcmpl-mock\",\"object\":\"chat.completion.chunk\",\"created\":1711115037,\"model\":\"mock-model\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"Hello from \"},\"finish_reason\":null}]}\n\n" +
	"data: {\"id\":\"chatcmpl-mock\",\"object\":\"chat.completion.chunk\",\"created\":1711115037,\"model\":\"mock-model\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"the mock model.\"},\"finish_reason\":null}]}\n\n" +
	"data: {\"id\":\"chatcmpl-mock\",\"object\":\"chat.completion.chunk\",\"created\":1711115037,\"model\":\"mock-model\",\"choices\":[{\"index\":0,\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n" +
	"data: {\"id\":\"chatcmpl-mock\",\"object\":\"chat.completion.chunk\",\"created\":1711115037,\"model\":\"mock-model\",\"choices\":[],\"usage\":{\"prompt_tokens\":12,\"completion_tokens\":6,\"total_tokens\":18}}\n\n" +
	"data: [DONE]\n\n"
