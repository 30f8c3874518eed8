package sqlinline

const QCreateRequestLog = `
create table if not exists request_log (
  id bigserial primary key,
  recorded_at timestamptz not null,
  client_id text not null,
  country text not null default '',
  topic text not null,
  outcome text not null,
  detail text not null default ''
);
`

const QInsertRequestLog = `
insert into request_log (recorded_at, client_id, country, topic, outcome, detail)
values ($1, $2, $3, $4, $5, $6);
`

const QSelectRecentRequestLog = `
select recorded_at, client_id, country, topic, outcome, detail
from request_log
order by recorded_at desc, id desc
limit $1;
`

const QRequestLogSummary = `
select
  count(*),
  count(*) filter (where outcome = 'success'),
  count(*) filter (where outcome <> 'success')
from request_log;
`
