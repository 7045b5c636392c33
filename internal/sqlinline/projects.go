package sqlinline

const QListProjects = `--sql 923cf1d0-c06a-4d7a-9e9c-a9865cd9e31e
select id::text, name, description, full_amount, invested_amount, fully_invested, create_date, close_date
from charity_projects
order by create_date asc, id asc;
`

const QListOpenProjects = `--sql c8388556-28c2-4498-97b0-7978547a18e8
select id::text, name, description, full_amount, invested_amount, fully_invested, create_date, close_date
from charity_projects
where not fully_invested
order by create_date asc, id asc;
`

const QGetProjectByID = `--sql 3cebc7e4-18b8-4ff0-a538-017fa087a12b
select id::text, name, description, full_amount, invested_amount, fully_invested, create_date, close_date
from charity_projects
where id = $1::uuid;
`

const QGetProjectByName = `--sql d8f1be72-24b0-49ec-bdc9-f3b9d5112c21
select id::text, name, description, full_amount, invested_amount, fully_invested, create_date, close_date
from charity_projects
where name = $1::text;
`

const QInsertProject = `--sql a7ac7629-a52c-4368-afec-63f6cc3af17c
insert into charity_projects(id, name, description, full_amount, invested_amount, fully_invested, create_date, close_date)
values ($1::uuid, $2::text, $3::text, $4::bigint, $5::bigint, $6::boolean, $7::timestamptz, $8::timestamptz);
`

const QUpdateProject = `--sql 0bed75af-d360-4cd5-8507-ff16905db1c2
update charity_projects
set name = $2::text,
    description = $3::text,
    full_amount = $4::bigint,
    fully_invested = $5::boolean,
    close_date = $6::timestamptz
where id = $1::uuid;
`

const QSaveProjectAllocation = `--sql 01f5e310-f88b-4d26-99cc-adc5317b786c
update charity_projects
set invested_amount = $2::bigint,
    fully_invested = $3::boolean,
    close_date = $4::timestamptz
where id = $1::uuid;
`

const QDeleteProject = `--sql 2bd0e833-64ac-4550-a179-ba4783a91c2f
delete from charity_projects
where id = $1::uuid and invested_amount = 0;
`

// QLockAllocation serializes allocation passes for the rest of the transaction.
const QLockAllocation = `--sql 562ff96e-46ca-4a45-b791-9f7d83dea187
select pg_advisory_xact_lock($1::bigint);
`
