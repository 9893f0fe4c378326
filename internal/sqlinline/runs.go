package sqlinline

const QInsertLocalizationRun = `--sql db1243ed-5d1f-41ad-92f2-e01378896c60
with incoming as (
  select
    $1::uuid  as id,
    $2::text  as business_name,
    $3::text  as industry,
    $4::text  as location,
    $5::text  as locale,
    $6::int   as asset_total,
    $7::text  as source_document
)
insert into localization_runs (
  id,
  business_name,
  industry,
  location,
  locale,
  status,
  asset_total,
  source_document,
  created_at,
  updated_at
)
values (
  (select id from incoming),
  (select business_name from incoming),
  (select industry from incoming),
  (select location from incoming),
  (select locale from incoming),
  'RUNNING',
  (select asset_total from incoming),
  (select source_document from incoming),
  now(),
  now()
)
returning id;
`

const QFinishLocalizationRun = `--sql 67959a29-84dc-41ff-ba55-281eec6ec2bc
update localization_runs
set
  status = $2::text,
  asset_completed = $3::int,
  asset_errored = $4::int,
  asset_skipped = $5::int,
  final_document = $6::text,
  updated_at = now()
where id = $1::uuid;
`

const QSelectLocalizationRun = `--sql ab032190-cb53-42a8-bc20-13c6deb08cf7
select
  id,
  business_name,
  industry,
  location,
  locale,
  status,
  asset_total,
  asset_completed,
  asset_errored,
  asset_skipped,
  final_document,
  created_at,
  updated_at
from localization_runs
where id = $1::uuid;
`

const QInsertManifestEntry = `--sql d0476a51-7c5f-45b7-896d-16e3a3199be3
insert into manifest_entries (
  id,
  run_id,
  position,
  original_reference,
  generated_reference,
  descriptive_text,
  section,
  prompt,
  created_at
)
values (
  gen_random_uuid(),
  $1::uuid,
  $2::int,
  $3::text,
  $4::text,
  $5::text,
  $6::text,
  $7::text,
  now()
);
`

const QSelectManifestEntries = `--sql dddf6df4-15f6-460e-a115-867e885be807
select
  original_reference,
  generated_reference,
  descriptive_text,
  section,
  prompt
from manifest_entries
where run_id = $1::uuid
order by position asc;
`

const QLocalizationStats = `--sql 7e073c42-687c-4e05-bd95-3e63074d7870
select
  count(*)                                                        as total_runs,
  count(*) filter (where status = 'COMPLETED')                    as completed_runs,
  count(*) filter (where status = 'RUNNING')                      as running_runs,
  coalesce(sum(asset_completed), 0)                               as assets_generated,
  coalesce(sum(asset_errored), 0)                                 as assets_errored,
  coalesce(sum(asset_skipped), 0)                                 as assets_skipped,
  count(*) filter (where created_at > now() - interval '24 hour') as runs_last24
from localization_runs;
`
