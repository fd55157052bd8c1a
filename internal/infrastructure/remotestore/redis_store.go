package remotestore

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/handyapp/gateway/internal/core/ports"
)

// providerScript resolves type -> id -> detail blob and matches the location
// on the server, so a lookup costs one round trip. The rules match
// matchProvider: only a JSON object is readable, a non-string location counts
// as none, and case folding is ASCII only. KEYS[1] is the type index
// key, ARGV[1] the service key prefix, ARGV[2] the requested location.
// Every key it touches carries the same hash tag, so it stays on one slot.
var providerScript = redis.NewScript(`
local id = redis.call('GET', KEYS[1])
if not id then
  return cjson.encode({status = 1})
end
local blob = redis.call('GET', ARGV[1] .. id)
if not blob then
  return cjson.encode({status = 2, id = id})
end
if not string.match(blob, '^%s*{') then
  return cjson.encode({status = 4, id = id})
end
local ok, rec = pcall(cjson.decode, blob)
if not ok or type(rec) ~= 'table' then
  return cjson.encode({status = 4, id = id})
end
local want = ARGV[2]
if want ~= '' then
  local got = rec['location']
  if type(got) ~= 'string' then
    got = ''
  end
  if string.lower(got) ~= string.lower(want) then
    return cjson.encode({status = 3, id = id})
  end
end
rec['status'] = 0
return cjson.encode(rec)
`)

// RedisStore is the remote store backed by Redis. Generic entries live under
// kvPrefix and the directory under servicePrefix, which should be a hash tag
// such as "{svc}" when running against a cluster.
type RedisStore struct {
	r             redis.Cmdable
	kvPrefix      string
	servicePrefix string
}

func NewRedisStore(r redis.Cmdable, kvPrefix, servicePrefix string) *RedisStore {
	return &RedisStore{r: r, kvPrefix: kvPrefix, servicePrefix: servicePrefix}
}

func (s *RedisStore) kvKey(key string) string {
	if s.kvPrefix == "" {
		return key
	}
	return s.kvPrefix + ":" + key
}

func (s *RedisStore) servicePrefixKey() string {
	if s.servicePrefix == "" {
		return ""
	}
	return s.servicePrefix + ":"
}

func (s *RedisStore) serviceKey(key string) string {
	return s.servicePrefixKey() + key
}

func (s *RedisStore) Put(ctx context.Context, key, value string) error {
	return s.r.Set(ctx, s.kvKey(key), value, 0).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.r.Get(ctx, s.kvKey(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) PutService(ctx context.Context, key, value string) error {
	return s.r.Set(ctx, s.serviceKey(key), value, 0).Err()
}

func (s *RedisStore) GetServiceProvider(ctx context.Context, serviceType, location string) ([]byte, bool, error) {
	res, err := providerScript.Run(ctx, s.r, []string{s.serviceKey(serviceType)}, s.servicePrefixKey(), location).Text()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if res == "" {
		return nil, false, nil
	}
	return []byte(res), true, nil
}

var _ ports.RemoteStore = (*RedisStore)(nil)
